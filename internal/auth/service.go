package auth

import (
	"context"
	"errors"
	"time"

	"github.com/vinyldesk/vinyldesk/internal/observability"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Service wraps authentication business rules: credential verification,
// platform-scoped token issuance and the lockout state machine.
type Service struct {
	repo     Repository
	verifier CredentialVerifier
	tokens   *TokenIssuer
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, verifier CredentialVerifier, tokens *TokenIssuer) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		tokens:   tokens,
		now:      time.Now,
	}
}

// WithMetrics attaches login/lockout counters. A nil receiver on the
// metrics side is a no-op, so wiring is optional.
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// LoginResult is returned on a successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Authenticate verifies the credential pair and issues a token scoped to
// platform. Lockout transitions are evaluated lazily on each attempt.
func (s *Service) Authenticate(ctx context.Context, login, password string, platform Platform) (*LoginResult, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Do not reveal whether the account exists.
			s.metrics.LoginAttempt(string(platform), "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, shared.AsStoreUnavailable(err)
	}

	if user.IsDeleted || !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if !user.CanAccess(platform) {
		return nil, ErrPlatformAccessDenied
	}

	now := s.now()
	if user.LockedUntil != nil {
		if now.Before(*user.LockedUntil) {
			s.metrics.LoginAttempt(string(platform), "locked")
			return nil, &AccountLockedError{Remaining: user.LockedUntil.Sub(now)}
		}
		// Lockout window elapsed: back to Active with a clean counter.
		if err := s.repo.ResetLoginState(ctx, user.ID); err != nil {
			return nil, shared.AsStoreUnavailable(err)
		}
		user.LoginRetryCount = 0
		user.LockedUntil = nil
	}

	if err := s.verifier.Compare(user.PasswordHash, password); err != nil {
		_, lockedUntil, recErr := s.repo.RecordFailedAttempt(ctx, user.ID, MaxLoginRetryLimit, now.Add(LoginReactiveTime))
		if recErr != nil {
			return nil, shared.AsStoreUnavailable(recErr)
		}
		s.metrics.LoginAttempt(string(platform), "failure")
		if lockedUntil != nil {
			s.metrics.Lockout()
		}
		// The attempt that trips the limit still reports invalid credentials;
		// only subsequent attempts inside the window see the lockout.
		return nil, ErrInvalidCredentials
	}

	if user.LoginRetryCount > 0 {
		if err := s.repo.ResetLoginState(ctx, user.ID); err != nil {
			return nil, shared.AsStoreUnavailable(err)
		}
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, platform)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt(string(platform), "success")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	UserType int
}

// Register creates a new active account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := s.verifier.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := NewUser(input.Username, input.Email, hash, input.UserType)
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// UserByID resolves a token subject to its account.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Tokens exposes the issuer for the authorization layer.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}
