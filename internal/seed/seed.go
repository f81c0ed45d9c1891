package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/rbac"
	"github.com/vinyldesk/vinyldesk/internal/registry"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Role codes created at boot. Weight is uniform; precedence between roles
// is not part of the authorization predicate.
var defaultRoles = []rbac.Role{
	rbac.NewRole("User", 1),
	rbac.NewRole("Admin", 1),
	rbac.NewRole("System_User", 1),
}

// UserSpec describes a bootstrap account. The password is hashed at seed
// time; Roles are granted after the account exists.
type UserSpec struct {
	Username string
	Email    string
	Password string
	UserType int
	Roles    []string
}

// Error marks a failed boot seeding stage. Seeding failures are fatal: the
// process must not serve requests over an incomplete permission graph.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("seed %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Seeder reconciles reference data at boot: roles, route permissions,
// role-route bindings and bootstrap accounts. Every stage is idempotent, so
// repeated boots and concurrent replicas converge.
type Seeder struct {
	logger   *slog.Logger
	users    auth.Repository
	verifier auth.CredentialVerifier
	store    rbac.Store
	routes   *registry.Seeder
}

// New constructs a boot seeder.
func New(logger *slog.Logger, users auth.Repository, verifier auth.CredentialVerifier, store rbac.Store) *Seeder {
	return &Seeder{
		logger:   logger,
		users:    users,
		verifier: verifier,
		store:    store,
		routes:   registry.NewSeeder(logger, store),
	}
}

// Run executes the full seeding pass over the discovered route surface.
func (s *Seeder) Run(ctx context.Context, entries []registry.Entry, users []UserSpec) error {
	if err := s.store.EnsureRoles(ctx, defaultRoles); err != nil {
		return &Error{Stage: "roles", Err: err}
	}
	if _, err := s.routes.Reconcile(ctx, entries); err != nil {
		return &Error{Stage: "routes", Err: err}
	}
	if err := s.bindRouteRoles(ctx, entries); err != nil {
		return &Error{Stage: "route roles", Err: err}
	}
	if err := s.ensureUsers(ctx, users); err != nil {
		return &Error{Stage: "users", Err: err}
	}
	if err := s.bindUserRoles(ctx, users); err != nil {
		return &Error{Stage: "user roles", Err: err}
	}
	return nil
}

// RolesForRoute is the default binding policy. Admin account management is
// open to every role; the rest of the admin surface is operator-only; the
// desktop surface serves both end-user account types.
func RolesForRoute(uri string) []string {
	switch {
	case uri == "/admin/user" || strings.HasPrefix(uri, "/admin/user/"):
		return []string{"USER", "ADMIN", "SYSTEM_USER"}
	case strings.HasPrefix(uri, "/admin/"):
		return []string{"SYSTEM_USER"}
	case strings.HasPrefix(uri, "/desktop/"):
		return []string{"USER", "ADMIN"}
	default:
		return nil
	}
}

func (s *Seeder) bindRouteRoles(ctx context.Context, entries []registry.Entry) error {
	bound := 0
	for _, entry := range entries {
		for _, code := range RolesForRoute(entry.URI) {
			if err := s.store.BindRoleToRoute(ctx, code, entry.URI, entry.Method); err != nil {
				return fmt.Errorf("bind %s to %s %s: %w", code, entry.Method, entry.URI, err)
			}
			bound++
		}
	}
	s.logger.Info("route role bindings reconciled", "bindings", bound)
	return nil
}

func (s *Seeder) ensureUsers(ctx context.Context, users []UserSpec) error {
	for _, spec := range users {
		_, err := s.users.FindByLogin(ctx, spec.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("lookup %s: %w", spec.Username, err)
		}
		hash, err := s.verifier.Hash(spec.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", spec.Username, err)
		}
		user := auth.NewUser(spec.Username, spec.Email, hash, spec.UserType)
		if _, err := s.users.Create(ctx, user); err != nil {
			// A concurrent replica may have won the insert.
			if errors.Is(err, shared.ErrDuplicate) {
				continue
			}
			return fmt.Errorf("create %s: %w", spec.Username, err)
		}
		s.logger.Info("bootstrap account created", "username", spec.Username)
	}
	return nil
}

func (s *Seeder) bindUserRoles(ctx context.Context, users []UserSpec) error {
	for _, spec := range users {
		for _, code := range spec.Roles {
			if err := s.store.BindRoleToUser(ctx, spec.Username, code); err != nil {
				return fmt.Errorf("grant %s to %s: %w", code, spec.Username, err)
			}
		}
	}
	return nil
}
