package kv

import (
	"context"
	"errors"
)

// ErrConflict is returned by PutIfUnchanged when the key moved on since the
// version the caller read.
var ErrConflict = errors.New("kv: version conflict")

// Version is the state of a key as observed by Get. The zero value means
// the key was absent.
type Version struct {
	Present bool
	Token   string
}

// Backend is the capability set the session store needs from a key-value
// store. Implementations must make PutIfUnchanged atomic with respect to
// every other writer, including other processes sharing the same backend.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, Version, error)
	PutIfUnchanged(ctx context.Context, key string, value []byte, expected Version) error
	Delete(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
