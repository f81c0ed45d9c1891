package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/rbac"
	"github.com/vinyldesk/vinyldesk/internal/registry"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

type memoryGraph struct {
	roles     map[string]rbac.Role
	routes    map[[2]string]rbac.ProjectRoute
	routeRole map[[2]int64]struct{}
	userRole  map[[2]int64]struct{}
	users     map[string]*auth.User
	nextID    int64
}

func newMemoryGraph() *memoryGraph {
	return &memoryGraph{
		roles:     map[string]rbac.Role{},
		routes:    map[[2]string]rbac.ProjectRoute{},
		routeRole: map[[2]int64]struct{}{},
		userRole:  map[[2]int64]struct{}{},
		users:     map[string]*auth.User{},
	}
}

// rbac.Store

func (m *memoryGraph) ListActiveRoutes(context.Context) ([]rbac.ProjectRoute, error) {
	var out []rbac.ProjectRoute
	for _, r := range m.routes {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryGraph) InsertRoutes(_ context.Context, routes []rbac.ProjectRoute) (int, error) {
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

func (m *memoryGraph) EnsureRoles(_ context.Context, roles []rbac.Role) error {
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

func (m *memoryGraph) RoleByCode(_ context.Context, code string) (rbac.Role, error) {
	role, ok := m.roles[code]
	if !ok {
		return rbac.Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (m *memoryGraph) RouteByURIMethod(_ context.Context, uri, method string) (rbac.ProjectRoute, error) {
	route, ok := m.routes[[2]string{uri, method}]
	if !ok {
		return rbac.ProjectRoute{}, shared.ErrNotFound
	}
	return route, nil
}

func (m *memoryGraph) BindRoleToRoute(ctx context.Context, roleCode, uri, method string) error {
	role, err := m.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	route, err := m.RouteByURIMethod(ctx, uri, method)
	if err != nil {
		return err
	}
	m.routeRole[[2]int64{route.ID, role.ID}] = struct{}{}
	return nil
}

func (m *memoryGraph) BindRoleToUser(ctx context.Context, username, roleCode string) error {
	role, err := m.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	user, ok := m.users[username]
	if !ok {
		return shared.ErrNotFound
	}
	m.userRole[[2]int64{user.ID, role.ID}] = struct{}{}
	return nil
}

func (m *memoryGraph) RolesForUser(_ context.Context, userID int64) ([]string, error) {
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

func (m *memoryGraph) BoundURIs(_ context.Context, method string, roleCodes []string) ([]string, error) {
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

// auth.Repository

func (m *memoryGraph) FindByLogin(_ context.Context, login string) (*auth.User, error) {
	user, ok := m.users[login]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryGraph) FindByID(_ context.Context, id int64) (*auth.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryGraph) Create(_ context.Context, user *auth.User) (int64, error) {
	if _, ok := m.users[user.Username]; ok {
		return 0, shared.ErrDuplicate
	}
	m.nextID++
	copied := *user
	copied.ID = m.nextID
	m.users[user.Username] = &copied
	return copied.ID, nil
}

func (m *memoryGraph) RecordFailedAttempt(context.Context, int64, int, time.Time) (int, *time.Time, error) {
	return 0, nil, nil
}

func (m *memoryGraph) ResetLoginState(context.Context, int64) error { return nil }

var (
	_ rbac.Store      = (*memoryGraph)(nil)
	_ auth.Repository = (*memoryGraph)(nil)
)

type plainVerifier struct{}

func (plainVerifier) Hash(password string) (string, error) { return "plain:" + password, nil }
func (plainVerifier) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return auth.ErrInvalidCredentials
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testEntries = []registry.Entry{
	{Method: "POST", URI: "/admin/user/create"},
	{Method: "GET", URI: "/admin/user/:id"},
	{Method: "POST", URI: "/admin/tag/create"},
	{Method: "GET", URI: "/desktop/api/v1/artist/:id"},
}

var testUsers = []UserSpec{
	{Username: "demo.user", Email: "demo.user@example.com", Password: "pw-user", UserType: auth.UserTypeUser, Roles: []string{"SYSTEM_USER"}},
	{Username: "demo.admin", Email: "demo.admin@example.com", Password: "pw-admin", UserType: auth.UserTypeAdmin, Roles: []string{"SYSTEM_USER"}},
}

func TestRolesForRoutePolicy(t *testing.T) {
	require.Equal(t, []string{"USER", "ADMIN", "SYSTEM_USER"}, RolesForRoute("/admin/user/create"))
	require.Equal(t, []string{"SYSTEM_USER"}, RolesForRoute("/admin/tag/create"))
	require.Equal(t, []string{"USER", "ADMIN"}, RolesForRoute("/desktop/api/v1/artist/:id"))
	require.Nil(t, RolesForRoute("/healthz"))
}

func TestRunSeedsGraph(t *testing.T) {
	graph := newMemoryGraph()
	seeder := New(testLogger(), graph, plainVerifier{}, graph)
	ctx := context.Background()

	require.NoError(t, seeder.Run(ctx, testEntries, testUsers))

	require.Len(t, graph.roles, 3)
	require.Len(t, graph.routes, len(testEntries))
	require.Len(t, graph.users, 2)

	// /admin/user/* carries all three roles, /admin/tag/* only the
	// operator role, desktop routes the two end-user roles.
	require.Len(t, graph.routeRole, 3+3+1+2)

	user, err := graph.FindByLogin(ctx, "demo.user")
	require.NoError(t, err)
	require.Equal(t, "plain:pw-user", user.PasswordHash)
	require.True(t, user.IsActive)

	codes, err := graph.RolesForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"SYSTEM_USER"}, codes)
}

func TestRunIsIdempotent(t *testing.T) {
	graph := newMemoryGraph()
	seeder := New(testLogger(), graph, plainVerifier{}, graph)
	ctx := context.Background()

	require.NoError(t, seeder.Run(ctx, testEntries, testUsers))
	routeRoles := len(graph.routeRole)
	users := len(graph.users)

	require.NoError(t, seeder.Run(ctx, testEntries, testUsers))
	require.Len(t, graph.routeRole, routeRoles)
	require.Len(t, graph.users, users)
}

func TestRunKeepsExistingAccounts(t *testing.T) {
	graph := newMemoryGraph()
	ctx := context.Background()
	existing := auth.NewUser("demo.user", "changed@example.com", "plain:rotated", auth.UserTypeUser)
	_, err := graph.Create(ctx, existing)
	require.NoError(t, err)

	seeder := New(testLogger(), graph, plainVerifier{}, graph)
	require.NoError(t, seeder.Run(ctx, testEntries, testUsers))

	user, err := graph.FindByLogin(ctx, "demo.user")
	require.NoError(t, err)
	require.Equal(t, "plain:rotated", user.PasswordHash)
}

func TestRunFailsFatallyOnStoreError(t *testing.T) {
	graph := newMemoryGraph()
	seeder := New(testLogger(), graph, plainVerifier{}, graph)

	// A user spec referencing a role that does not exist aborts the pass.
	bad := []UserSpec{{Username: "demo.user", Password: "pw", UserType: auth.UserTypeUser, Roles: []string{"NOPE"}}}
	err := seeder.Run(context.Background(), testEntries, bad)
	require.Error(t, err)
	var seedErr *Error
	require.ErrorAs(t, err, &seedErr)
	require.Equal(t, "user roles", seedErr.Stage)
}
