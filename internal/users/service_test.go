package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

type fakeVerifier struct{}

func (fakeVerifier) Hash(password string) (string, error) { return "h:" + password, nil }

func (fakeVerifier) Compare(hash, password string) error {
	if hash != "h:"+password {
		return shared.ErrNotFound
	}
	return nil
}

type memoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]Account
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: map[int64]Account{}}
}

func (m *memoryRepo) Create(_ context.Context, account Account) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return Account{}, shared.ErrDuplicate
		}
	}
	account.ID = m.nextID
	m.nextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) List(_ context.Context, req catalog.ListRequest) ([]Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Account
	for _, a := range m.accounts {
		if a.IsDeleted {
			continue
		}
		if req.Search != "" && !strings.Contains(a.Username, req.Search) && !strings.Contains(a.Email, req.Search) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.IsDeleted {
		return Account{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Count(_ context.Context, _ catalog.CountRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if !a.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Update(_ context.Context, account Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.accounts[account.ID]
	if !ok || existing.IsDeleted {
		return shared.ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *memoryRepo) UpdateBulk(_ context.Context, ids []int64, in Input, passwordHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := m.accounts[id]
		if !ok || a.IsDeleted {
			continue
		}
		in.apply(&a, passwordHash)
		m.accounts[id] = a
		n++
	}
	return n, nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.IsDeleted {
		return shared.ErrNotFound
	}
	a.IsDeleted = true
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) SoftDeleteMany(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.SoftDelete(context.Background(), id); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memoryRepo) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.Delete(context.Background(), id); err == nil {
			n++
		}
	}
	return n, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateHashesPasswordAndDefaults(t *testing.T) {
	svc := NewService(newMemoryRepo(), fakeVerifier{})

	account, err := svc.Create(context.Background(), Input{
		Username: ptr("new.user"),
		Email:    ptr("new.user@example.com"),
		Password: ptr("opensesame"),
	})
	require.NoError(t, err)
	require.Equal(t, "h:opensesame", account.PasswordHash)
	require.Equal(t, 1, account.UserType)
	require.True(t, account.IsActive)
}

func TestCreateRequiresCredentials(t *testing.T) {
	svc := NewService(newMemoryRepo(), fakeVerifier{})

	_, err := svc.Create(context.Background(), Input{Username: ptr("no.password"), Email: ptr("x@example.com")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Input{Password: ptr("opensesame")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsDuplicateLogin(t *testing.T) {
	svc := NewService(newMemoryRepo(), fakeVerifier{})

	in := Input{Username: ptr("dup"), Email: ptr("dup@example.com"), Password: ptr("opensesame")}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, fakeVerifier{})

	account, err := svc.Create(context.Background(), Input{
		Username: ptr("merge.me"),
		Email:    ptr("merge@example.com"),
		Password: ptr("opensesame"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), account.ID, Input{Email: ptr("new@example.com")})
	require.NoError(t, err)
	require.Equal(t, "merge.me", updated.Username)
	require.Equal(t, "new@example.com", updated.Email)
	require.Equal(t, "h:opensesame", updated.PasswordHash)
}

func TestUpdateRehashesNewPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, fakeVerifier{})

	account, err := svc.Create(context.Background(), Input{
		Username: ptr("rotate"),
		Email:    ptr("rotate@example.com"),
		Password: ptr("oldpassword"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), account.ID, Input{Password: ptr("newpassword")})
	require.NoError(t, err)
	require.Equal(t, "h:newpassword", updated.PasswordHash)
}

func TestSoftDeleteHidesAccount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, fakeVerifier{})

	account, err := svc.Create(context.Background(), Input{
		Username: ptr("gone.soon"),
		Email:    ptr("gone@example.com"),
		Password: ptr("opensesame"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), account.ID))

	_, err = svc.Get(context.Background(), account.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.SoftDelete(context.Background(), account.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
