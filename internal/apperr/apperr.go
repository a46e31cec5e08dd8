// Package apperr classifies failures so handlers can pick a status code
// without knowing which backend or provider produced them.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindValidation
	KindStorage
	KindProvider
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindProvider:
		return "provider"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Auth(op string, err error) error       { return E(KindAuth, op, err) }
func Validation(op string, err error) error { return E(KindValidation, op, err) }
func Storage(op string, err error) error    { return E(KindStorage, op, err) }
func Provider(op string, err error) error   { return E(KindProvider, op, err) }
func NotFound(op string, err error) error   { return E(KindNotFound, op, err) }

// KindOf returns the outermost kind found in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
