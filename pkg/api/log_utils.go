package api

import (
	"time"

	"go.uber.org/zap"
)

const LogBodyLimit = 4096

func LogSafe(b []byte) []byte {
	if len(b) > LogBodyLimit {
		out := make([]byte, 0, LogBodyLimit+16)
		out = append(out, b[:LogBodyLimit]...)
		return append(out, []byte("... [truncated]")...)
	}
	return b
}

func LogRequest(logger *zap.Logger, tag, reqID, method, path string, body []byte) time.Time {
	logger.Info(tag+"_request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.ByteString("body", LogSafe(body)),
	)
	return time.Now()
}

func LogResponse(logger *zap.Logger, tag, reqID string, status int, started time.Time) {
	logger.Info(tag+"_response",
		zap.String("request_id", reqID),
		zap.Int("status", status),
		zap.Int64("latency_ms", time.Since(started).Milliseconds()),
	)
}
