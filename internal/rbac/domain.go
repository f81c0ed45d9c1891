package rbac

import (
	"errors"
	"strings"
	"time"
)

// ErrForbidden indicates an authenticated caller whose roles hold no binding
// for the requested route.
var ErrForbidden = errors.New("rbac: forbidden")

// Role is static reference data; code is the uppercase canonical key.
type Role struct {
	ID        int64
	Name      string
	Code      string
	Weight    int
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRole constructs a role with the canonical code derived from its name
// and default flags stamped at construction time.
func NewRole(name string, weight int) Role {
	return Role{
		Name:      name,
		Code:      strings.ToUpper(name),
		Weight:    weight,
		IsActive:  true,
		IsDeleted: false,
	}
}

// ProjectRoute is one discovered (uri, method) pair persisted as a
// permission object. URIs keep their template form (`:id` segments).
type ProjectRoute struct {
	ID        int64
	URI       string
	Method    string
	RouteName string
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RouteName derives the human-readable secondary key for a URI: lowercase
// with path separators replaced by underscores.
func RouteName(uri string) string {
	return strings.ReplaceAll(strings.ToLower(uri), "/", "_")
}

// NewProjectRoute normalizes the URI and stamps default flags.
func NewProjectRoute(uri, method string) ProjectRoute {
	uri = strings.ToLower(uri)
	return ProjectRoute{
		URI:       uri,
		Method:    strings.ToUpper(method),
		RouteName: RouteName(uri),
		IsActive:  true,
		IsDeleted: false,
	}
}

// RouteRole binds a role to a route; existence of the row is the sole
// authorization predicate.
type RouteRole struct {
	ID      int64
	RouteID int64
	RoleID  int64
}

// UserRole grants a role to a user.
type UserRole struct {
	ID     int64
	UserID int64
	RoleID int64
}
