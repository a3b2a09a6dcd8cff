package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is the part of a storage backend the checker needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	Timeout time.Duration
	Backend Pinger
	Logger  *zap.Logger
}

func New(timeout time.Duration, backend Pinger, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{Timeout: timeout, Backend: backend, Logger: logger}
}

// Check pings the backend within the checker timeout.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	return c.Backend.Ping(ctx)
}

func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Check(r.Context()); err != nil {
			c.Logger.Warn("health_check_failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`"unavailable"`))
			return
		}
		_, _ = w.Write([]byte(`"ok"`))
	}
}
