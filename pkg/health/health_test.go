package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestChecker(p Pinger) *Checker {
	logger, _ := zap.NewDevelopment()
	return New(50*time.Millisecond, p, logger)
}

func TestHandler_OK(t *testing.T) {
	h := newTestChecker(pingFunc(func(context.Context) error { return nil }))
	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `"ok"`, rec.Body.String())
}

func TestHandler_BackendDown(t *testing.T) {
	h := newTestChecker(pingFunc(func(context.Context) error { return errors.New("refused") }))
	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheck_Timeout(t *testing.T) {
	h := newTestChecker(pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	start := time.Now()
	err := h.Check(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}
