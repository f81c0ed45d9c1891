package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/catalog/artists"
	"github.com/vinyldesk/vinyldesk/internal/catalog/collections"
	"github.com/vinyldesk/vinyldesk/internal/catalog/images"
	"github.com/vinyldesk/vinyldesk/internal/catalog/products"
	"github.com/vinyldesk/vinyldesk/internal/catalog/tags"
	"github.com/vinyldesk/vinyldesk/internal/catalog/variants"
	"github.com/vinyldesk/vinyldesk/internal/observability"
	"github.com/vinyldesk/vinyldesk/internal/rbac"
	"github.com/vinyldesk/vinyldesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Guard   *rbac.Guard

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	ArtistsHandler     *artists.Handler
	TagsHandler        *tags.Handler
	CollectionsHandler *collections.Handler
	ProductsHandler    *products.Handler
	VariantsHandler    *variants.Handler
	ImagesHandler      *images.Handler
}

// PublicPrefixes lists the route prefixes that bypass the authorization
// guard. Route-permission reconciliation excludes the same prefixes so no
// binding is ever created for them.
func PublicPrefixes() []string {
	return []string{"/healthz", "/metrics", "/admin/auth", "/desktop/api/v1/auth"}
}

// NewRouter builds the full routing tree. Every route outside PublicPrefixes
// sits behind the guard of its platform. The returned router is also the
// input to route-permission reconciliation at startup.
func NewRouter(params RouterParams) chi.Router {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, auth.PlatformAdmin)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequirePlatform(auth.PlatformAdmin))
			r.Route("/user", params.UsersHandler.MountRoutes)
			mountCatalog(r, params)
		})
	})

	r.Route("/desktop/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, auth.PlatformDesktop)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequirePlatform(auth.PlatformDesktop))
			mountCatalog(r, params)
		})
	})

	return r
}

func mountCatalog(r chi.Router, params RouterParams) {
	r.Route("/artist", params.ArtistsHandler.MountRoutes)
	r.Route("/tag", params.TagsHandler.MountRoutes)
	r.Route("/collection", params.CollectionsHandler.MountRoutes)
	r.Route("/product", params.ProductsHandler.MountRoutes)
	r.Route("/variant", params.VariantsHandler.MountRoutes)
	r.Route("/image", params.ImagesHandler.MountRoutes)
}
