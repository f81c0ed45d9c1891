package rbac

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// Service is the role binding store: it owns Role, RouteRole and UserRole
// records and answers the authorization predicate.
type Service struct {
	store Store
	cache *RoleCache
	group singleflight.Group
}

// NewService constructs a Service. cache may be nil.
func NewService(store Store, cache *RoleCache) *Service {
	return &Service{store: store, cache: cache}
}

// Store exposes the underlying store for seeding.
func (s *Service) Store() Store {
	return s.store
}

// BindRoleToRoute idempotently binds a role to a route. Fails with
// shared.ErrNotFound when either side is missing or inactive.
func (s *Service) BindRoleToRoute(ctx context.Context, roleCode, uri, method string) error {
	return s.store.BindRoleToRoute(ctx, roleCode, uri, method)
}

// BindRoleToUser idempotently grants a role to a user and invalidates the
// user's cached role set.
func (s *Service) BindRoleToUser(ctx context.Context, username, roleCode string) error {
	if err := s.store.BindRoleToUser(ctx, username, roleCode); err != nil {
		return err
	}
	// Username-keyed bind cannot invalidate by id without a lookup; the
	// cache TTL bounds staleness for this path.
	return nil
}

// RolesForUser returns the user's role codes, served from cache when
// possible. Concurrent misses for the same user collapse into one query.
func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	if codes, ok := s.cache.Get(ctx, userID); ok {
		return codes, nil
	}
	v, err, _ := s.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		codes, err := s.store.RolesForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, userID, codes)
		return codes, nil
	})
	if err != nil {
		return nil, shared.AsStoreUnavailable(err)
	}
	return v.([]string), nil
}

// InvalidateUser drops a user's cached role set after an administrative
// binding change.
func (s *Service) InvalidateUser(ctx context.Context, userID int64) {
	s.cache.Invalidate(ctx, userID)
}

// IsRouteBoundToAnyRole is the authorization predicate: whether any of the
// caller's roles is bound to a route template matching (path, method).
// Store failures propagate so the caller can fail closed.
func (s *Service) IsRouteBoundToAnyRole(ctx context.Context, path, method string, roleCodes []string) (bool, error) {
	if len(roleCodes) == 0 {
		return false, nil
	}
	uris, err := s.store.BoundURIs(ctx, method, roleCodes)
	if err != nil {
		return false, shared.AsStoreUnavailable(err)
	}
	return MatchAny(path, uris), nil
}
