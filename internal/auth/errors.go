package auth

import (
	"errors"
	"fmt"
	"time"
)

// Authentication error taxonomy. Handlers map these to response codes; the
// service never leaks store errors as credential decisions.
var (
	ErrInvalidCredentials   = errors.New("auth: invalid credentials")
	ErrAccountDisabled      = errors.New("auth: account disabled")
	ErrAccountLocked        = errors.New("auth: account locked")
	ErrInvalidToken         = errors.New("auth: invalid token")
	ErrExpiredToken         = errors.New("auth: token expired")
	ErrWrongPlatformToken   = errors.New("auth: token issued for another platform")
	ErrPlatformAccessDenied = errors.New("auth: platform access denied")
)

// AccountLockedError reports how long the lockout window has left.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("auth: account locked, retry in %s", e.Remaining.Round(time.Second))
}

// Unwrap lets errors.Is(err, ErrAccountLocked) match.
func (e *AccountLockedError) Unwrap() error {
	return ErrAccountLocked
}
