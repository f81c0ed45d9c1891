package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinyldesk/vinyldesk/internal/rbac"
)

type memoryRouteStore struct {
	mu          sync.Mutex
	routes      map[[2]string]rbac.ProjectRoute
	insertCalls int
}

func newMemoryRouteStore() *memoryRouteStore {
	return &memoryRouteStore{routes: map[[2]string]rbac.ProjectRoute{}}
}

func (m *memoryRouteStore) ListActiveRoutes(_ context.Context) ([]rbac.ProjectRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	routes := make([]rbac.ProjectRoute, 0, len(m.routes))
	for _, route := range m.routes {
		routes = append(routes, route)
	}
	return routes, nil
}

func (m *memoryRouteStore) InsertRoutes(_ context.Context, routes []rbac.ProjectRoute) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	inserted := 0
	for _, route := range routes {
		key := [2]string{route.URI, route.Method}
		if _, ok := m.routes[key]; ok {
			continue
		}
		m.routes[key] = route
		inserted++
	}
	return inserted, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconcileInsertsMissingRoutes(t *testing.T) {
	store := newMemoryRouteStore()
	seeder := NewSeeder(testLogger(), store)

	entries := []Entry{
		{Method: "POST", URI: "/admin/artist/create"},
		{Method: "GET", URI: "/admin/artist/:id"},
	}
	result, err := seeder.Reconcile(context.Background(), entries)
	require.NoError(t, err)
	require.Equal(t, Result{Discovered: 2, Inserted: 2, Skipped: 0}, result)

	route := store.routes[[2]string{"/admin/artist/:id", "GET"}]
	require.Equal(t, "_admin_artist_:id", route.RouteName)
	require.True(t, route.IsActive)
	require.False(t, route.IsDeleted)
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := newMemoryRouteStore()
	seeder := NewSeeder(testLogger(), store)
	entries := []Entry{
		{Method: "POST", URI: "/admin/artist/create"},
		{Method: "GET", URI: "/admin/artist/:id"},
	}

	_, err := seeder.Reconcile(context.Background(), entries)
	require.NoError(t, err)

	result, err := seeder.Reconcile(context.Background(), entries)
	require.NoError(t, err)
	require.Equal(t, Result{Discovered: 2, Inserted: 0, Skipped: 2}, result)
	require.Len(t, store.routes, 2)
	// Second pass finds everything in the bulk read and never writes.
	require.Equal(t, 1, store.insertCalls)
}

func TestReconcilePartialOverlap(t *testing.T) {
	store := newMemoryRouteStore()
	seeder := NewSeeder(testLogger(), store)

	_, err := seeder.Reconcile(context.Background(), []Entry{
		{Method: "POST", URI: "/admin/artist/create"},
	})
	require.NoError(t, err)

	result, err := seeder.Reconcile(context.Background(), []Entry{
		{Method: "POST", URI: "/admin/artist/create"},
		{Method: "DELETE", URI: "/admin/artist/delete/:id"},
	})
	require.NoError(t, err)
	require.Equal(t, Result{Discovered: 2, Inserted: 1, Skipped: 1}, result)
}

func TestReconcileConcurrentPasses(t *testing.T) {
	store := newMemoryRouteStore()
	entries := []Entry{
		{Method: "POST", URI: "/admin/artist/create"},
		{Method: "GET", URI: "/admin/artist/:id"},
		{Method: "PUT", URI: "/admin/artist/update/:id"},
	}

	var wg sync.WaitGroup
	inserted := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seeder := NewSeeder(testLogger(), store)
			result, err := seeder.Reconcile(context.Background(), entries)
			require.NoError(t, err)
			inserted[i] = result.Inserted
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range inserted {
		total += n
	}
	require.Equal(t, len(entries), total)
	require.Len(t, store.routes, len(entries))
}
