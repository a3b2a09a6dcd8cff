package sessions

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/signal-directory/pkg/kv"
	"github.com/shuliakovsky/signal-directory/pkg/metrics"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseBackoff = 10 * time.Millisecond
	DefaultMaxBackoff  = 200 * time.Millisecond
)

type Options struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Logger      *zap.Logger
}

// Store keeps sessions in a kv.Backend. It holds no per-key state of its
// own: concurrent joins on one key are serialized by the backend's
// conditional write only, so several processes may share one backend.
type Store struct {
	backend     kv.Backend
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      *zap.Logger
}

func NewStore(backend kv.Backend, opts Options) *Store {
	s := &Store{
		backend:     backend,
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
		maxBackoff:  opts.MaxBackoff,
		logger:      opts.Logger,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = DefaultMaxAttempts
	}
	if s.baseBackoff <= 0 {
		s.baseBackoff = DefaultBaseBackoff
	}
	if s.maxBackoff < s.baseBackoff {
		s.maxBackoff = max(DefaultMaxBackoff, s.baseBackoff)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// ListSessionIDs returns every stored session id, sorted.
func (s *Store) ListSessionIDs(ctx context.Context) ([]string, error) {
	ids, err := s.backend.ListKeys(ctx)
	if err != nil {
		return nil, newError(KindStoreUnavailable, "list", "", err)
	}
	return ids, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return nil, newError(KindInvalidInput, "get", id, errors.New("empty session id"))
	}
	cur, ver, err := s.load(ctx, "get", id)
	if err != nil {
		return nil, err
	}
	if !ver.Present {
		return nil, newError(KindNotFound, "get", id, nil)
	}
	return cur, nil
}

// JoinSession adds p to the session, creating it when absent, and returns
// the stored result. A peer id already present with the same offer is a
// no-op; with a different offer it replaces the earlier entry in place.
func (s *Store) JoinSession(ctx context.Context, id string, p Peer) (Session, error) {
	if id == "" {
		return nil, newError(KindInvalidInput, "join", id, errors.New("empty session id"))
	}
	if p.PeerID == "" {
		return nil, newError(KindInvalidInput, "join", id, errors.New("empty peer_id"))
	}

	for attempt := 1; ; attempt++ {
		cur, ver, err := s.load(ctx, "join", id)
		if err != nil {
			return nil, err
		}
		next, changed := cur.withPeer(p)
		if !changed {
			return cur, nil
		}
		b, err := Encode(next)
		if err != nil {
			return nil, newError(KindInvalidInput, "join", id, err)
		}

		err = s.backend.PutIfUnchanged(ctx, id, b, ver)
		if err == nil {
			metrics.SessionsJoined.Inc()
			s.logger.Debug("session_joined",
				zap.String("session", id),
				zap.String("peer", p.PeerID),
				zap.Int("peers", len(next)),
				zap.Int("attempt", attempt))
			return next, nil
		}
		if !errors.Is(err, kv.ErrConflict) {
			return nil, newError(KindStoreUnavailable, "join", id, err)
		}

		metrics.JoinConflicts.Inc()
		if attempt >= s.maxAttempts {
			metrics.JoinExhausted.Inc()
			s.logger.Warn("join_retries_exhausted", zap.String("session", id), zap.Int("attempts", attempt))
			return nil, newError(KindConcurrentModification, "join", id, err)
		}
		s.logger.Debug("join_conflict", zap.String("session", id), zap.Int("attempt", attempt))
		if err := sleepCtx(ctx, s.backoff(attempt)); err != nil {
			return nil, newError(KindStoreUnavailable, "join", id, err)
		}
	}
}

// DeleteSession removes the session and reports whether it existed.
func (s *Store) DeleteSession(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, newError(KindInvalidInput, "delete", id, errors.New("empty session id"))
	}
	ok, err := s.backend.Delete(ctx, id)
	if err != nil {
		return false, newError(KindStoreUnavailable, "delete", id, err)
	}
	return ok, nil
}

func (s *Store) Close() error { return s.backend.Close() }

// load reads and decodes the session. An absent key yields an empty session
// and the zero Version.
func (s *Store) load(ctx context.Context, op, id string) (Session, kv.Version, error) {
	raw, ver, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, kv.Version{}, newError(KindStoreUnavailable, op, id, err)
	}
	if !ver.Present {
		return Session{}, ver, nil
	}
	cur, err := Decode(raw)
	if err != nil {
		return nil, kv.Version{}, newError(KindDecode, op, id, err)
	}
	return cur, ver, nil
}

func (s *Store) backoff(attempt int) time.Duration {
	d := s.baseBackoff << (attempt - 1)
	if d <= 0 || d > s.maxBackoff {
		d = s.maxBackoff
	}
	return d + rand.N(d/2+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
