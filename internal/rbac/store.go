package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinyldesk/vinyldesk/internal/platform/dbquery"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Store defines persistence for the role/route/user binding graph.
type Store interface {
	ListActiveRoutes(ctx context.Context) ([]ProjectRoute, error)
	// InsertRoutes bulk-inserts routes, ignoring duplicate (uri, method)
	// pairs from a concurrent seeder. Returns the number actually inserted.
	InsertRoutes(ctx context.Context, routes []ProjectRoute) (int, error)
	EnsureRoles(ctx context.Context, roles []Role) error
	RoleByCode(ctx context.Context, code string) (Role, error)
	RouteByURIMethod(ctx context.Context, uri, method string) (ProjectRoute, error)
	BindRoleToRoute(ctx context.Context, roleCode, uri, method string) error
	BindRoleToUser(ctx context.Context, username, roleCode string) error
	RolesForUser(ctx context.Context, userID int64) ([]string, error)
	// BoundURIs returns the URI templates of active routes with the given
	// method that are bound to at least one of the role codes.
	BoundURIs(ctx context.Context, method string, roleCodes []string) ([]string, error)
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL binding store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ListActiveRoutes returns all active route-permission rows in one bulk read.
func (s *PGStore) ListActiveRoutes(ctx context.Context) ([]ProjectRoute, error) {
	where, args := dbquery.Build(1, dbquery.Eq("is_active", true), dbquery.Eq("is_deleted", false))
	rows, err := s.pool.Query(ctx,
		`SELECT id, uri, method, route_name, is_active, is_deleted, created_at, updated_at
		 FROM project_routes WHERE `+where+` ORDER BY uri, method`, args...)
	if err != nil {
		return nil, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()
	var routes []ProjectRoute
	for rows.Next() {
		var r ProjectRoute
		if err := rows.Scan(&r.ID, &r.URI, &r.Method, &r.RouteName, &r.IsActive, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, shared.AsStoreUnavailable(rows.Err())
}

// InsertRoutes bulk-inserts missing routes with conflict-ignore semantics.
func (s *PGStore) InsertRoutes(ctx context.Context, routes []ProjectRoute) (int, error) {
	if len(routes) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, route := range routes {
		batch.Queue(
			`INSERT INTO project_routes (uri, method, route_name, is_active, is_deleted, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now(), now())
			 ON CONFLICT (uri, method) WHERE is_active AND NOT is_deleted DO NOTHING`,
			route.URI, route.Method, route.RouteName, route.IsActive, route.IsDeleted)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range routes {
		tag, err := results.Exec()
		if err != nil {
			return inserted, shared.AsStoreUnavailable(err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// EnsureRoles inserts any missing roles, keyed by code.
func (s *PGStore) EnsureRoles(ctx context.Context, roles []Role) error {
	batch := &pgx.Batch{}
	for _, role := range roles {
		batch.Queue(
			`INSERT INTO roles (name, code, weight, is_active, is_deleted, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now(), now())
			 ON CONFLICT (code) DO NOTHING`,
			role.Name, role.Code, role.Weight, role.IsActive, role.IsDeleted)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range roles {
		if _, err := results.Exec(); err != nil {
			return shared.AsStoreUnavailable(err)
		}
	}
	return nil
}

// RoleByCode fetches an active role by its canonical code.
func (s *PGStore) RoleByCode(ctx context.Context, code string) (Role, error) {
	var r Role
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, code, weight, is_active, is_deleted, created_at, updated_at
		 FROM roles WHERE code = $1 AND is_active AND NOT is_deleted`, code).
		Scan(&r.ID, &r.Name, &r.Code, &r.Weight, &r.IsActive, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("role %s: %w", code, shared.ErrNotFound)
		}
		return Role{}, shared.AsStoreUnavailable(err)
	}
	return r, nil
}

// RouteByURIMethod fetches an active route by its normalized pair.
func (s *PGStore) RouteByURIMethod(ctx context.Context, uri, method string) (ProjectRoute, error) {
	var r ProjectRoute
	err := s.pool.QueryRow(ctx,
		`SELECT id, uri, method, route_name, is_active, is_deleted, created_at, updated_at
		 FROM project_routes WHERE uri = $1 AND method = $2 AND is_active AND NOT is_deleted`,
		uri, method).
		Scan(&r.ID, &r.URI, &r.Method, &r.RouteName, &r.IsActive, &r.IsDeleted, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProjectRoute{}, fmt.Errorf("route %s %s: %w", method, uri, shared.ErrNotFound)
		}
		return ProjectRoute{}, shared.AsStoreUnavailable(err)
	}
	return r, nil
}

// BindRoleToRoute idempotently inserts a RouteRole row.
func (s *PGStore) BindRoleToRoute(ctx context.Context, roleCode, uri, method string) error {
	role, err := s.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	route, err := s.RouteByURIMethod(ctx, uri, method)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO route_roles (route_id, role_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (route_id, role_id) DO NOTHING`,
		route.ID, role.ID)
	return shared.AsStoreUnavailable(err)
}

// BindRoleToUser idempotently inserts a UserRole row.
func (s *PGStore) BindRoleToUser(ctx context.Context, username, roleCode string) error {
	role, err := s.RoleByCode(ctx, roleCode)
	if err != nil {
		return err
	}
	var userID int64
	err = s.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1 AND is_active AND NOT is_deleted`, username).
		Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", username, shared.ErrNotFound)
		}
		return shared.AsStoreUnavailable(err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, role.ID)
	return shared.AsStoreUnavailable(err)
}

// RolesForUser returns the user's active role codes ordered by weight.
func (s *PGStore) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.code
		 FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1 AND r.is_active AND NOT r.is_deleted
		 ORDER BY r.weight DESC, r.code`, userID)
	if err != nil {
		return nil, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, shared.AsStoreUnavailable(rows.Err())
}

// BoundURIs resolves which route templates the given role set may call for
// a method.
func (s *PGStore) BoundURIs(ctx context.Context, method string, roleCodes []string) ([]string, error) {
	codes := make([]any, len(roleCodes))
	for i, c := range roleCodes {
		codes[i] = c
	}
	where, args := dbquery.Build(1,
		dbquery.Eq("pr.method", method),
		dbquery.Eq("pr.is_active", true),
		dbquery.Eq("pr.is_deleted", false),
		dbquery.In("r.code", codes...),
	)
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT pr.uri
		 FROM project_routes pr
		 JOIN route_roles rr ON rr.route_id = pr.id
		 JOIN roles r ON r.id = rr.role_id AND r.is_active AND NOT r.is_deleted
		 WHERE `+where, args...)
	if err != nil {
		return nil, shared.AsStoreUnavailable(err)
	}
	defer rows.Close()
	var uris []string
	for rows.Next() {
		var uri string
		if err := rows.Scan(&uri); err != nil {
			return nil, err
		}
		uris = append(uris, uri)
	}
	return uris, shared.AsStoreUnavailable(rows.Err())
}

var _ Store = (*PGStore)(nil)
