// Package apperr defines the error kinds every shop operation can surface to a caller.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindTypeMismatch
	KindForbidden
	KindInvalidPatch
	KindIntegrityViolation
	KindStoreFailure
	KindConflict
	KindInvalid
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindForbidden:
		return "forbidden"
	case KindInvalidPatch:
		return "invalid_patch"
	case KindIntegrityViolation:
		return "integrity_violation"
	case KindStoreFailure:
		return "store_failure"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across the domain boundary.
type Error struct {
	Kind     Kind
	Resource string
	ID       int64
	Expected string
	Actual   string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		if e.ID > 0 {
			return fmt.Sprintf("%s with id %d was not found", e.Resource, e.ID)
		}
		return fmt.Sprintf("%s was not found", e.Resource)
	case KindTypeMismatch:
		return fmt.Sprintf("expected service type: %s, type received: %s", e.Expected, e.Actual)
	case KindForbidden:
		return "not authorized to perform this action on this customer"
	case KindIntegrityViolation:
		return fmt.Sprintf("integrity violation: %s %d is missing its %s", e.Resource, e.ID, e.Msg)
	}
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(resource string, id int64) error {
	return &Error{Kind: KindNotFound, Resource: resource, ID: id}
}

func TypeMismatch(expected, actual string) error {
	return &Error{Kind: KindTypeMismatch, Expected: expected, Actual: actual}
}

func Forbidden() error {
	return &Error{Kind: KindForbidden}
}

func InvalidPatch(msg string) error {
	return &Error{Kind: KindInvalidPatch, Msg: msg}
}

// IntegrityViolation reports a back-reference that should exist under cascading deletes but does not.
func IntegrityViolation(resource string, id int64, relation string) error {
	return &Error{Kind: KindIntegrityViolation, Resource: resource, ID: id, Msg: relation}
}

func StoreFailure(err error) error {
	return &Error{Kind: KindStoreFailure, Msg: "something went wrong", Err: err}
}

func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Msg: msg, Err: err}
}

func Invalid(msg string, err error) error {
	return &Error{Kind: KindInvalid, Msg: msg, Err: err}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, k Kind) bool { return KindOf(err) == k }
