package kv

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

type entry struct {
	value []byte
	rev   uint64
}

// Memory is a process-local Backend. Every write bumps a global revision
// which doubles as the version token.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	rev     uint64
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, Version{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, Version{}, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, Version{Present: true, Token: strconv.FormatUint(e.rev, 10)}, nil
}

func (m *Memory) PutIfUnchanged(ctx context.Context, key string, value []byte, expected Version) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if ok != expected.Present {
		return ErrConflict
	}
	if ok && strconv.FormatUint(e.rev, 10) != expected.Token {
		return ErrConflict
	}
	m.rev++
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = entry{value: stored, rev: m.rev}
	return nil
}

// Put writes unconditionally. Used to seed fixtures.
func (m *Memory) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rev++
	m.entries[key] = entry{value: append([]byte(nil), value...), rev: m.rev}
}

func (m *Memory) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

func (m *Memory) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }
