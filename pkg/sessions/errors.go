package sessions

import (
	"errors"
	"fmt"
)

// Kind classifies every error the store returns.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDecode
	KindConcurrentModification
	KindStoreUnavailable
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode_error"
	case KindConcurrentModification:
		return "concurrent_modification"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Store.
type Error struct {
	Kind      Kind
	Op        string
	SessionID string
	Err       error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrDecode                 = &Error{Kind: KindDecode}
	ErrConcurrentModification = &Error{Kind: KindConcurrentModification}
	ErrStoreUnavailable       = &Error{Kind: KindStoreUnavailable}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.SessionID != "" {
		msg += fmt.Sprintf(" (session %q)", e.SessionID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, id string, err error) *Error {
	return &Error{Kind: kind, Op: op, SessionID: id, Err: err}
}
