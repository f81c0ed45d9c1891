package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/observability"
	"github.com/vinyldesk/vinyldesk/internal/platform/httpx"
	"github.com/vinyldesk/vinyldesk/internal/shared"
)

// TokenVerifier checks a bearer token against one platform's key.
type TokenVerifier interface {
	Verify(token string, platform auth.Platform) (int64, error)
}

// UserResolver loads the account behind a token subject.
type UserResolver interface {
	UserByID(ctx context.Context, id int64) (*auth.User, error)
}

// Guard is the per-request authorization decision function wired as chi
// middleware.
type Guard struct {
	Logger   *slog.Logger
	Tokens   TokenVerifier
	Users    UserResolver
	Bindings *Service
	Metrics  *observability.Metrics
}

// Authorize resolves a token into a principal and checks that one of the
// principal's roles is bound to (path, method). Pure with respect to its
// inputs given a consistent store snapshot.
func (g *Guard) Authorize(ctx context.Context, token, path, method string, platform auth.Platform) (shared.Principal, error) {
	userID, err := g.Tokens.Verify(token, platform)
	if err != nil {
		return shared.Principal{}, err
	}

	user, err := g.Users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Principal{}, auth.ErrInvalidToken
		}
		return shared.Principal{}, shared.AsStoreUnavailable(err)
	}
	if user.IsDeleted || !user.IsActive {
		return shared.Principal{}, auth.ErrAccountDisabled
	}

	roles, err := g.Bindings.RolesForUser(ctx, user.ID)
	if err != nil {
		return shared.Principal{}, shared.AsStoreUnavailable(err)
	}

	bound, err := g.Bindings.IsRouteBoundToAnyRole(ctx, path, method, roles)
	if err != nil {
		// Fail closed, but as a transient failure, not a denial.
		return shared.Principal{}, shared.AsStoreUnavailable(err)
	}
	if !bound {
		return shared.Principal{}, ErrForbidden
	}
	return shared.Principal{UserID: user.ID, Roles: roles}, nil
}

// RequirePlatform returns middleware enforcing authorization for every
// route mounted beneath it, using the platform's signing key.
func (g *Guard) RequirePlatform(platform auth.Platform) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				g.deny(w, auth.ErrInvalidToken, platform)
				return
			}
			principal, err := g.Authorize(r.Context(), token, r.URL.Path, r.Method, platform)
			if err != nil {
				g.deny(w, err, platform)
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, err error, platform auth.Platform) {
	g.Metrics.AuthzDenied(string(platform))
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token expired")
	case errors.Is(err, auth.ErrWrongPlatformToken):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token not valid for this platform")
	case errors.Is(err, auth.ErrInvalidToken):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or missing token")
	case errors.Is(err, auth.ErrAccountDisabled):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "account disabled")
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "no role binding for this route")
	case shared.IsTransient(err):
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "authorization store unavailable")
	default:
		if g.Logger != nil {
			g.Logger.Error("authorize", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
