package registry

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func noop(http.ResponseWriter, *http.Request) {}

func TestNormalizeURI(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/desktop/api/v1/Artist/{id}", "/desktop/api/v1/artist/:id"},
		{"/admin/tag/{id:[0-9]+}", "/admin/tag/:id"},
		{"/admin/tag/list/", "/admin/tag/list"},
		{"/", "/"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeURI(tc.in))
	}
}

func TestFromRouterEnumeratesTemplates(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/admin/artist/create", noop)
	r.Get("/admin/artist/{id}", noop)
	r.Put("/admin/artist/update/{id}", noop)
	r.Get("/desktop/api/v1/artist/{id}", noop)

	entries, err := New().FromRouter(r)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Method: "GET", URI: "/admin/artist/:id"},
		{Method: "POST", URI: "/admin/artist/create"},
		{Method: "PUT", URI: "/admin/artist/update/:id"},
		{Method: "GET", URI: "/desktop/api/v1/artist/:id"},
	}, entries)
}

func TestFromRouterExcludesPublicPrefixes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/healthz", noop)
	r.Get("/metrics", noop)
	r.Post("/admin/auth/login", noop)
	r.Post("/admin/auth/register", noop)
	r.Post("/admin/tag/create", noop)

	entries, err := New("/healthz", "/metrics", "/admin/auth", "/desktop/api/v1/auth").FromRouter(r)
	require.NoError(t, err)
	require.Equal(t, []Entry{{Method: "POST", URI: "/admin/tag/create"}}, entries)
}

func TestFromRouterDeterministicOrder(t *testing.T) {
	build := func() []Entry {
		r := chi.NewRouter()
		r.Get("/admin/b", noop)
		r.Post("/admin/a", noop)
		r.Get("/admin/a", noop)
		entries, err := New().FromRouter(r)
		require.NoError(t, err)
		return entries
	}
	first := build()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, build())
	}
}
