package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrStoreUnavailable indicates a transient infrastructure failure during a
	// store-backed call. Callers may retry with bounded backoff; domain errors
	// such as invalid credentials are never wrapped in it.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AsStoreUnavailable classifies deadline and cancellation failures as
// transient, so that "we don't know" never masquerades as a domain decision.
func AsStoreUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}

// IsTransient reports whether err should be surfaced as a retryable
// infrastructure failure rather than a domain decision.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
