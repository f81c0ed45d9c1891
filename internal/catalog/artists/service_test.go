package artists

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalog "github.com/vinyldesk/vinyldesk/internal/catalog/shared"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

type memoryRepo struct {
	artists map[int64]Artist
	handles map[string]int64
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{artists: map[int64]Artist{}, handles: map[string]int64{}}
}

func (m *memoryRepo) Create(_ context.Context, artist Artist) (Artist, error) {
	if _, ok := m.handles[artist.Handle]; ok {
		return Artist{}, shared.ErrDuplicate
	}
	m.nextID++
	artist.ID = m.nextID
	artist.CreatedAt = time.Now()
	artist.UpdatedAt = artist.CreatedAt
	m.artists[artist.ID] = artist
	m.handles[artist.Handle] = artist.ID
	return artist, nil
}

func (m *memoryRepo) CreateBulk(ctx context.Context, artists []Artist) (int64, error) {
	var n int64
	for _, artist := range artists {
		if _, err := m.Create(ctx, artist); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (m *memoryRepo) List(_ context.Context, req catalog.ListRequest) ([]Artist, int, error) {
	var out []Artist
	for _, a := range m.artists {
		if a.IsDeleted {
			continue
		}
		if req.IsActive != nil && a.IsActive != *req.IsActive {
			continue
		}
		if req.Search != "" && !strings.Contains(a.Name, req.Search) && !strings.Contains(a.Handle, req.Search) {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Artist, error) {
	a, ok := m.artists[id]
	if !ok || a.IsDeleted {
		return Artist{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Count(ctx context.Context, req catalog.CountRequest) (int, error) {
	_, total, err := m.List(ctx, catalog.ListRequest{Search: req.Search, IsActive: req.IsActive})
	return total, err
}

func (m *memoryRepo) Update(_ context.Context, artist Artist) error {
	existing, ok := m.artists[artist.ID]
	if !ok || existing.IsDeleted {
		return shared.ErrNotFound
	}
	if id, ok := m.handles[artist.Handle]; ok && id != artist.ID {
		return shared.ErrDuplicate
	}
	delete(m.handles, existing.Handle)
	artist.UpdatedAt = time.Now()
	m.artists[artist.ID] = artist
	m.handles[artist.Handle] = artist.ID
	return nil
}

func (m *memoryRepo) UpdateBulk(_ context.Context, ids []int64, in Input, _ int64) (int64, error) {
	var n int64
	for _, id := range ids {
		a, ok := m.artists[id]
		if !ok || a.IsDeleted {
			continue
		}
		in.apply(&a)
		m.artists[id] = a
		n++
	}
	return n, nil
}

func (m *memoryRepo) SoftDelete(_ context.Context, id, _ int64) error {
	a, ok := m.artists[id]
	if !ok || a.IsDeleted {
		return shared.ErrNotFound
	}
	a.IsDeleted = true
	m.artists[id] = a
	return nil
}

func (m *memoryRepo) SoftDeleteMany(ctx context.Context, ids []int64, by int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.SoftDelete(ctx, id, by); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	a, ok := m.artists[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(m.artists, id)
	delete(m.handles, a.Handle)
	return nil
}

func (m *memoryRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.Delete(ctx, id); err == nil {
			n++
		}
	}
	return n, nil
}

var _ Repository = (*memoryRepo)(nil)

func ptr[T any](v T) *T { return &v }

func TestCreateStampsDefaultsAndSlug(t *testing.T) {
	svc := NewService(newMemoryRepo())
	artist, err := svc.Create(context.Background(), Input{
		Handle: ptr("Miles Davis"),
		Name:   ptr("Miles Davis"),
	}, 7)
	require.NoError(t, err)
	require.Equal(t, "miles-davis", artist.Handle)
	require.True(t, artist.IsActive)
	require.False(t, artist.IsDeleted)
	require.Equal(t, int64(7), *artist.AddedBy)
}

func TestCreateRequiresHandle(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Input{Name: ptr("No Handle")}, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateHandle(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Create(ctx, Input{Handle: ptr("nina-simone")}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Handle: ptr("nina-simone")}, 1)
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateMergesProvidedFieldsOnly(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, Input{
		Handle: ptr("john-coltrane"),
		Name:   ptr("John Coltrane"),
		Title:  ptr("Saxophonist"),
	}, 1)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Input{Title: ptr("Composer")}, 2)
	require.NoError(t, err)
	require.Equal(t, "Composer", updated.Title)
	require.Equal(t, "John Coltrane", updated.Name)
	require.Equal(t, "john-coltrane", updated.Handle)
	require.Equal(t, int64(2), *updated.UpdatedBy)
}

func TestSoftDeleteHidesRecord(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, Input{Handle: ptr("hidden")}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, created.ID, 1))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Soft-deleting twice is NotFound, not a silent success.
	require.ErrorIs(t, svc.SoftDelete(ctx, created.ID, 1), shared.ErrNotFound)
}

func TestBulkOperationsEmptyInput(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	n, err := svc.UpdateBulk(ctx, nil, Input{IsActive: ptr(false)}, 1)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = svc.SoftDeleteMany(ctx, nil, 1)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = svc.DeleteMany(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "cafe-tacvba", catalog.Slugify("Café Tacvba"))
	require.Equal(t, "ac-dc", catalog.Slugify("AC/DC"))
	require.Equal(t, "miles", catalog.Slugify("  Miles  "))
}
