package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchTemplate(t *testing.T) {
	cases := []struct {
		template string
		path     string
		want     bool
	}{
		{"/admin/tag/create", "/admin/tag/create", true},
		{"/admin/tag/create", "/admin/tag/list", false},
		{"/desktop/api/v1/artist/:id", "/desktop/api/v1/artist/42", true},
		{"/desktop/api/v1/artist/:id", "/desktop/api/v1/artist/", false},
		{"/desktop/api/v1/artist/:id", "/desktop/api/v1/artist/42/extra", false},
		{"/desktop/api/v1/artist/:id", "/desktop/api/v1/artist", false},
		{"/admin/artist/update/:id", "/admin/artist/update/7", true},
		{"/admin/artist/update/:id", "/admin/artist/delete/7", false},
		// Case-insensitive on literal segments.
		{"/admin/tag/create", "/Admin/Tag/Create", true},
		// Template form is never path-expanded into a literal.
		{"/admin/artist/:id", "/admin/artist/:id", true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, MatchTemplate(tc.template, tc.path),
			"template %q path %q", tc.template, tc.path)
	}
}

func TestMatchAny(t *testing.T) {
	templates := []string{"/admin/tag/create", "/admin/tag/:id"}
	require.True(t, MatchAny("/admin/tag/55", templates))
	require.False(t, MatchAny("/admin/tag/55/edit", templates))
	require.False(t, MatchAny("/admin/user/55", nil))
}
