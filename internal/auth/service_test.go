package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/observability"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*auth.User)}
}

func (r *memoryRepo) add(u *auth.User) *auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return u
}

func (r *memoryRepo) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memoryRepo) Create(_ context.Context, user *auth.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, shared.ErrDuplicate
		}
	}
	r.nextID++
	clone := *user
	clone.ID = r.nextID
	r.users[clone.ID] = &clone
	return clone.ID, nil
}

func (r *memoryRepo) RecordFailedAttempt(_ context.Context, id int64, limit int, lockUntil time.Time) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, nil, shared.ErrNotFound
	}
	u.LoginRetryCount++
	if u.LoginRetryCount >= limit && u.LockedUntil == nil {
		until := lockUntil
		u.LockedUntil = &until
	}
	return u.LoginRetryCount, u.LockedUntil, nil
}

func (r *memoryRepo) ResetLoginState(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.LoginRetryCount = 0
	u.LockedUntil = nil
	return nil
}

// plainVerifier avoids bcrypt cost in state machine tests.
type plainVerifier struct{}

func (plainVerifier) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainVerifier) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*auth.Service, *memoryRepo, *fakeClock) {
	t.Helper()
	repo := newMemoryRepo()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tokens := auth.NewTokenIssuer("desktop-secret", "admin-secret", 0).WithClock(clock.Now)
	svc := auth.NewService(repo, plainVerifier{}, tokens).WithClock(clock.Now)
	return svc, repo, clock
}

func seedUser(repo *memoryRepo, username, password string, userType int) *auth.User {
	u := auth.NewUser(username, username+"@example.com", "plain:"+password, userType)
	return repo.add(u)
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(repo, "alice", "s3cretpass", auth.UserTypeUser)

	result, err := svc.Authenticate(context.Background(), "alice", "s3cretpass", auth.PlatformDesktop)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, user.ID, result.User.ID)

	id, err := svc.Tokens().Verify(result.Token, auth.PlatformDesktop)
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "nobody", "whatever", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticateDisabledAccounts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	inactive := seedUser(repo, "inactive", "pw", auth.UserTypeUser)
	inactive.IsActive = false
	deleted := seedUser(repo, "deleted", "pw", auth.UserTypeUser)
	deleted.IsDeleted = true

	_, err := svc.Authenticate(context.Background(), "inactive", "pw", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrAccountDisabled)

	_, err = svc.Authenticate(context.Background(), "deleted", "pw", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrAccountDisabled)
}

func TestAuthenticatePlatformAccess(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(repo, "regular", "pw123456", auth.UserTypeUser)
	seedUser(repo, "boss", "pw123456", auth.UserTypeAdmin)

	_, err := svc.Authenticate(context.Background(), "regular", "pw123456", auth.PlatformAdmin)
	require.ErrorIs(t, err, auth.ErrPlatformAccessDenied)

	_, err = svc.Authenticate(context.Background(), "boss", "pw123456", auth.PlatformAdmin)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), "boss", "pw123456", auth.PlatformDesktop)
	require.NoError(t, err)
}

func TestLockoutAfterLimitFailures(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	// The attempt that reaches the limit still reports invalid credentials.
	for i := 0; i < auth.MaxLoginRetryLimit; i++ {
		_, err := svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials, "attempt %d", i+1)
	}

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LockedUntil)

	// Any attempt inside the window is rejected, even with correct credentials.
	_, err = svc.Authenticate(context.Background(), "alice", "rightpass", auth.PlatformDesktop)
	var locked *auth.AccountLockedError
	require.ErrorAs(t, err, &locked)
	require.ErrorIs(t, err, auth.ErrAccountLocked)
	require.Greater(t, locked.Remaining, time.Duration(0))
	require.LessOrEqual(t, locked.Remaining, auth.LoginReactiveTime)
}

func TestLockoutExpiresLazily(t *testing.T) {
	svc, repo, clock := newTestService(t)
	user := seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	for i := 0; i < auth.MaxLoginRetryLimit; i++ {
		_, err := svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	clock.Advance(auth.LoginReactiveTime + time.Second)

	result, err := svc.Authenticate(context.Background(), "alice", "rightpass", auth.PlatformDesktop)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, stored.LoginRetryCount)
	require.Nil(t, stored.LockedUntil)
}

func TestLockoutExpiryResetsCounter(t *testing.T) {
	svc, repo, clock := newTestService(t)
	user := seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	for i := 0; i < auth.MaxLoginRetryLimit; i++ {
		_, _ = svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
	}
	clock.Advance(auth.LoginReactiveTime + time.Second)

	// First failure after expiry starts a fresh count, not a re-lock.
	_, err := svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.LoginRetryCount)
	require.Nil(t, stored.LockedUntil)
}

func TestConcurrentFailedAttempts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	const attempts = 10
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
			require.Error(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LockedUntil)
	require.GreaterOrEqual(t, stored.LoginRetryCount, auth.MaxLoginRetryLimit)
}

func TestSuccessResetsCounter(t *testing.T) {
	svc, repo, _ := newTestService(t)
	user := seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	_, err := svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "alice", "rightpass", auth.PlatformDesktop)
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, stored.LoginRetryCount)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedUser(repo, "alice", "pw", auth.UserTypeUser)

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "anotherpass",
		UserType: auth.UserTypeUser,
	})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAuthenticateRecordsMetrics(t *testing.T) {
	svc, repo, _ := newTestService(t)
	metrics := observability.NewMetrics()
	svc.WithMetrics(metrics)
	seedUser(repo, "alice", "rightpass", auth.UserTypeUser)

	_, err := svc.Authenticate(context.Background(), "alice", "rightpass", auth.PlatformDesktop)
	require.NoError(t, err)

	for i := 0; i < auth.MaxLoginRetryLimit; i++ {
		_, err = svc.Authenticate(context.Background(), "alice", "wrongpass", auth.PlatformDesktop)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	var locked *auth.AccountLockedError
	_, err = svc.Authenticate(context.Background(), "alice", "rightpass", auth.PlatformDesktop)
	require.ErrorAs(t, err, &locked)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	require.Contains(t, body, `vinyldesk_logins_total{outcome="success",platform="desktop"} 1`)
	require.Contains(t, body, `vinyldesk_logins_total{outcome="failure",platform="desktop"} 3`)
	require.Contains(t, body, `vinyldesk_logins_total{outcome="locked",platform="desktop"} 1`)
	require.Contains(t, body, "vinyldesk_lockouts_total 1")
}
