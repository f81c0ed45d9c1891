package products

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[string]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[string]Product{}}
}

func (m *memoryRepo) Create(_ context.Context, product Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.Handle == product.Handle {
			return Product{}, shared.ErrDuplicate
		}
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *memoryRepo) CreateBulk(ctx context.Context, products []Product) (int64, error) {
	var n int64
	for _, p := range products {
		if _, err := m.Create(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (m *memoryRepo) List(_ context.Context, _ catalog.ListRequest) ([]Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Product
	for _, p := range m.products {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.IsDeleted {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Count(_ context.Context, _ catalog.CountRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.products {
		if !p.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Update(_ context.Context, product Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[product.ID]
	if !ok || existing.IsDeleted {
		return shared.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *memoryRepo) UpdateBulk(_ context.Context, ids []string, in Input, by int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		p, ok := m.products[id]
		if !ok || p.IsDeleted {
			continue
		}
		in.apply(&p)
		p.UpdatedBy = &by
		m.products[id] = p
		n++
	}
	return n, nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id string, by int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.IsDeleted {
		return shared.ErrNotFound
	}
	p.IsDeleted = true
	p.UpdatedBy = &by
	m.products[id] = p
	return nil
}

func (m *memoryRepo) SoftDeleteMany(ctx context.Context, ids []string, by int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.SoftDelete(ctx, id, by); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.Delete(ctx, id); err == nil {
			n++
		}
	}
	return n, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateAssignsUUIDAndSlug(t *testing.T) {
	svc := NewService(newMemoryRepo())

	product, err := svc.Create(context.Background(), Input{Handle: ptr("Kind of Blue LP")}, 7)
	require.NoError(t, err)

	_, err = uuid.Parse(product.ID)
	require.NoError(t, err)
	require.Equal(t, "kind-of-blue-lp", product.Handle)
	require.True(t, product.IsActive)
	require.Equal(t, int64(7), *product.AddedBy)
}

func TestCreateRequiresHandle(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Input{Title: ptr("Untitled")}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateBulkAssignsDistinctIDs(t *testing.T) {
	svc := NewService(newMemoryRepo())
	seen := map[string]bool{}
	svc.newID = func() string {
		id := uuid.NewString()
		seen[id] = true
		return id
	}

	count, err := svc.CreateBulk(context.Background(), []Input{
		{Handle: ptr("first-pressing")},
		{Handle: ptr("second-pressing")},
		{Handle: ptr("third-pressing")},
	}, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
	require.Len(t, seen, 3)
}

func TestUpdateMergesMetafieldsOnlyWhenProvided(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), Input{
		Handle:     ptr("blue-train"),
		Metafields: json.RawMessage(`{"label":"Blue Note"}`),
	}, 1)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), product.ID, Input{Title: ptr("Blue Train")}, 2)
	require.NoError(t, err)
	require.Equal(t, "Blue Train", updated.Title)
	require.JSONEq(t, `{"label":"Blue Note"}`, string(updated.Metafields))
	require.Equal(t, int64(2), *updated.UpdatedBy)

	updated, err = svc.Update(context.Background(), product.ID, Input{
		Metafields: json.RawMessage(`{"label":"Impulse!"}`),
	}, 2)
	require.NoError(t, err)
	require.JSONEq(t, `{"label":"Impulse!"}`, string(updated.Metafields))
}

func TestSoftDeletedProductIsNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), Input{Handle: ptr("giant-steps")}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), product.ID, 1))

	_, err = svc.Get(context.Background(), product.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
