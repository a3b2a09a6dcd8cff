package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/metrics"
	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

const wsWriteWait = 5 * time.Second

type WS struct {
	Store    SessionStore
	Logger   *zap.Logger
	Interval time.Duration
	Timeout  time.Duration
	watchers *limiter
}

func NewWS(store SessionStore, interval time.Duration, maxWatchers int, logger *zap.Logger) *WS {
	return &WS{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Timeout:  5 * time.Second,
		watchers: newLimiter(maxWatchers),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var emptySession = []byte("[]")

// ServeWS streams the session under /ws/{id} to the client: one text frame
// with the full peer list now and another every time it changes. An absent
// session is sent as an empty list.
func (w *WS) ServeWS(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !w.watchers.tryAcquire() {
		writeJSON(rw, http.StatusServiceUnavailable, errorBody{Error: "too many watchers"})
		return
	}
	defer w.watchers.release()

	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.Logger.Warn("ws_upgrade_failed", zap.Error(err))
		metrics.WSError.Inc()
		return
	}
	defer conn.Close()

	metrics.WSWatchers.Inc()
	defer metrics.WSWatchers.Dec()
	w.Logger.Info("ws_watch_started", zap.String("session", id))

	// The client never sends anything meaningful; reading only surfaces close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	var last []byte
	for {
		b, err := w.snapshot(r.Context(), id)
		if err != nil {
			w.Logger.Warn("ws_snapshot_failed", zap.String("session", id), zap.Error(err))
			metrics.WSError.Inc()
			msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, sessions.KindOf(err).String())
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		}
		if !bytes.Equal(b, last) {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				w.Logger.Debug("ws_write_error", zap.String("session", id), zap.Error(err))
				metrics.WSError.Inc()
				return
			}
			last = b
		}
		select {
		case <-closed:
			w.Logger.Info("ws_watch_closed", zap.String("session", id))
			return
		case <-r.Context().Done():
			return
		case <-t.C:
		}
	}
}

func (w *WS) snapshot(ctx context.Context, id string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	sess, err := w.Store.GetSession(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return emptySession, nil
	}
	if err != nil {
		return nil, err
	}
	return sessions.Encode(sess)
}
