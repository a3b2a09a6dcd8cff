package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

// SessionStore is the store surface the HTTP layer depends on.
type SessionStore interface {
	ListSessionIDs(ctx context.Context) ([]string, error)
	GetSession(ctx context.Context, id string) (sessions.Session, error)
	JoinSession(ctx context.Context, id string, p sessions.Peer) (sessions.Session, error)
	DeleteSession(ctx context.Context, id string) (bool, error)
}

type Sessions struct {
	Store       SessionStore
	Logger      *zap.Logger
	Timeout     time.Duration
	MaxBody     int64
	ValidateSDP bool
}

func NewSessions(store SessionStore, logger *zap.Logger) *Sessions {
	return &Sessions{
		Store:   store,
		Logger:  logger,
		Timeout: 5 * time.Second,
		MaxBody: 64 << 10,
	}
}

type deleteResult struct {
	Deleted bool `json:"deleted"`
}

func (s *Sessions) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.Timeout)
}

// GET /
func (s *Sessions) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()
	ids, err := s.Store.ListSessionIDs(ctx)
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GET /{id}
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()
	sess, err := s.Store.GetSession(ctx, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// POST /{id}
func (s *Sessions) Join(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reqID := r.Header.Get(RequestIDHeader)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxBody))
	started := LogRequest(s.Logger, "join", reqID, r.Method, r.URL.Path, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "body too large", Kind: sessions.KindInvalidInput.String()})
			LogResponse(s.Logger, "join", reqID, http.StatusRequestEntityTooLarge, started)
			return
		}
		LogResponse(s.Logger, "join", reqID, s.fail(w, r, "join", invalid(id, err)), started)
		return
	}

	var p sessions.Peer
	if err := json.Unmarshal(body, &p); err != nil {
		LogResponse(s.Logger, "join", reqID, s.fail(w, r, "join", invalid(id, err)), started)
		return
	}
	if s.ValidateSDP {
		if err := validateOffer(p.Offer); err != nil {
			LogResponse(s.Logger, "join", reqID, s.fail(w, r, "join", invalid(id, err)), started)
			return
		}
	}

	ctx, cancel := s.ctx(r)
	defer cancel()
	sess, err := s.Store.JoinSession(ctx, id, p)
	if err != nil {
		LogResponse(s.Logger, "join", reqID, s.fail(w, r, "join", err), started)
		return
	}
	writeJSON(w, http.StatusOK, sess)
	LogResponse(s.Logger, "join", reqID, http.StatusOK, started)
}

// DELETE /{id}
func (s *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.ctx(r)
	defer cancel()
	id := r.PathValue("id")
	ok, err := s.Store.DeleteSession(ctx, id)
	if err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	s.Logger.Info("session_deleted", zap.String("session", id), zap.Bool("existed", ok))
	writeJSON(w, http.StatusOK, deleteResult{Deleted: ok})
}

func (s *Sessions) fail(w http.ResponseWriter, r *http.Request, op string, err error) int {
	code := writeError(w, err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", r.Header.Get(RequestIDHeader)),
		zap.String("kind", sessions.KindOf(err).String()),
		zap.Int("status", code),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		s.Logger.Error("session_request_failed", fields...)
	} else {
		s.Logger.Debug("session_request_rejected", fields...)
	}
	return code
}

func invalid(id string, err error) error {
	return &sessions.Error{Kind: sessions.KindInvalidInput, Op: "join", SessionID: id, Err: err}
}
