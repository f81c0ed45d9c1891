package rbac

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// memoryStore is an in-memory Store for service and middleware tests.
type memoryStore struct {
	mu        sync.Mutex
	roles     map[string]Role
	routes    map[[2]string]ProjectRoute
	routeRole map[[2]int64]struct{} // (routeID, roleID)
	userRole  map[[2]int64]struct{} // (userID, roleID)
	usernames map[string]int64
	nextID    int64

	failWith  error
	roleReads int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		roles:     map[string]Role{},
		routes:    map[[2]string]ProjectRoute{},
		routeRole: map[[2]int64]struct{}{},
		userRole:  map[[2]int64]struct{}{},
		usernames: map[string]int64{},
	}
}

func (m *memoryStore) addUser(username string, id int64) {
	m.usernames[username] = id
}

func (m *memoryStore) ListActiveRoutes(context.Context) ([]ProjectRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ProjectRoute
	for _, r := range m.routes {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) InsertRoutes(_ context.Context, routes []ProjectRoute) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, route := range routes {
		key := [2]string{route.URI, route.Method}
		if _, ok := m.routes[key]; ok {
			continue
		}
		m.nextID++
		route.ID = m.nextID
		m.routes[key] = route
		inserted++
	}
	return inserted, nil
}

func (m *memoryStore) EnsureRoles(_ context.Context, roles []Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, role := range roles {
		if _, ok := m.roles[role.Code]; ok {
			continue
		}
		m.nextID++
		role.ID = m.nextID
		m.roles[role.Code] = role
	}
	return nil
}

func (m *memoryStore) RoleByCode(_ context.Context, code string) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[code]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (m *memoryStore) RouteByURIMethod(_ context.Context, uri, method string) (ProjectRoute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	route, ok := m.routes[[2]string{uri, method}]
	if !ok {
		return ProjectRoute{}, shared.ErrNotFound
	}
	return route, nil
}

func (m *memoryStore) BindRoleToRoute(ctx context.Context, roleCode, uri, method string) error {
	role, err := m.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	route, err := m.RouteByURIMethod(ctx, uri, method)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routeRole[[2]int64{route.ID, role.ID}] = struct{}{}
	return nil
}

func (m *memoryStore) BindRoleToUser(ctx context.Context, username, roleCode string) error {
	role, err := m.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.usernames[username]
	if !ok {
		return shared.ErrNotFound
	}
	m.userRole[[2]int64{userID, role.ID}] = struct{}{}
	return nil
}

func (m *memoryStore) RolesForUser(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleReads++
	if m.failWith != nil {
		return nil, m.failWith
	}
	var codes []string
	for key := range m.userRole {
		if key[0] != userID {
			continue
		}
		for code, role := range m.roles {
			if role.ID == key[1] {
				codes = append(codes, code)
			}
		}
	}
	return codes, nil
}

func (m *memoryStore) BoundURIs(_ context.Context, method string, roleCodes []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	allowed := map[int64]struct{}{}
	for _, code := range roleCodes {
		if role, ok := m.roles[code]; ok {
			allowed[role.ID] = struct{}{}
		}
	}
	var uris []string
	for _, route := range m.routes {
		if route.Method != method {
			continue
		}
		for key := range m.routeRole {
			if key[0] != route.ID {
				continue
			}
			if _, ok := allowed[key[1]]; ok {
				uris = append(uris, route.URI)
				break
			}
		}
	}
	return uris, nil
}

var _ Store = (*memoryStore)(nil)

func seedGraph(t *testing.T, store *memoryStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureRoles(ctx, []Role{
		NewRole("User", 1),
		NewRole("Admin", 1),
		NewRole("System_User", 1),
	}))
	_, err := store.InsertRoutes(ctx, []ProjectRoute{
		NewProjectRoute("/desktop/api/v1/artist/:id", "GET"),
		NewProjectRoute("/admin/tag/create", "POST"),
	})
	require.NoError(t, err)
	store.addUser("alice", 1)
	store.addUser("root", 2)
	require.NoError(t, store.BindRoleToRoute(ctx, "USER", "/desktop/api/v1/artist/:id", "GET"))
	require.NoError(t, store.BindRoleToRoute(ctx, "SYSTEM_USER", "/admin/tag/create", "POST"))
	require.NoError(t, store.BindRoleToUser(ctx, "alice", "USER"))
	require.NoError(t, store.BindRoleToUser(ctx, "root", "SYSTEM_USER"))
}

func TestIsRouteBoundToAnyRole(t *testing.T) {
	store := newMemoryStore()
	seedGraph(t, store)
	svc := NewService(store, nil)
	ctx := context.Background()

	bound, err := svc.IsRouteBoundToAnyRole(ctx, "/desktop/api/v1/artist/42", "GET", []string{"USER"})
	require.NoError(t, err)
	require.True(t, bound)

	// Same path, role without a binding.
	bound, err = svc.IsRouteBoundToAnyRole(ctx, "/desktop/api/v1/artist/42", "GET", []string{"SYSTEM_USER"})
	require.NoError(t, err)
	require.False(t, bound)

	// Method mismatch.
	bound, err = svc.IsRouteBoundToAnyRole(ctx, "/desktop/api/v1/artist/42", "DELETE", []string{"USER"})
	require.NoError(t, err)
	require.False(t, bound)
}

func TestIsRouteBoundEmptyRoleSetDeniesWithoutQuery(t *testing.T) {
	store := newMemoryStore()
	seedGraph(t, store)
	store.failWith = errors.New("must not be called")
	svc := NewService(store, nil)

	bound, err := svc.IsRouteBoundToAnyRole(context.Background(), "/admin/tag/create", "POST", nil)
	require.NoError(t, err)
	require.False(t, bound)
}

func TestIsRouteBoundStoreFailureIsTransient(t *testing.T) {
	store := newMemoryStore()
	seedGraph(t, store)
	store.failWith = context.DeadlineExceeded
	svc := NewService(store, nil)

	_, err := svc.IsRouteBoundToAnyRole(context.Background(), "/admin/tag/create", "POST", []string{"SYSTEM_USER"})
	require.Error(t, err)
	require.True(t, shared.IsTransient(err))
}

func TestRolesForUserCached(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemoryStore()
	seedGraph(t, store)
	svc := NewService(store, NewRoleCache(client, time.Minute))
	ctx := context.Background()

	codes, err := svc.RolesForUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"USER"}, codes)
	require.Equal(t, 1, store.roleReads)

	// Second read is served from the cache.
	codes, err = svc.RolesForUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"USER"}, codes)
	require.Equal(t, 1, store.roleReads)

	// Invalidation forces a store read again.
	svc.InvalidateUser(ctx, 1)
	_, err = svc.RolesForUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, store.roleReads)
}

func TestRolesForUserCacheDownFallsThrough(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	srv.Close()

	store := newMemoryStore()
	seedGraph(t, store)
	svc := NewService(store, NewRoleCache(client, time.Minute))

	codes, err := svc.RolesForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, []string{"USER"}, codes)
}
