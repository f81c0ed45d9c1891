package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T, desktop, admin string) {
	t.Setenv("DESKTOP_JWT_SECRET", desktop)
	t.Setenv("ADMIN_JWT_SECRET", admin)
}

func TestLoadConfigDefaults(t *testing.T) {
	setSecrets(t, "desktop-secret", "admin-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "development", cfg.AppEnv)
	require.False(t, cfg.IsProduction())
	require.Empty(t, cfg.SeedUsers())
}

func TestLoadConfigRejectsSharedSecret(t *testing.T) {
	setSecrets(t, "same-secret", "same-secret")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestSeedUsersFollowConfiguredPasswords(t *testing.T) {
	setSecrets(t, "desktop-secret", "admin-secret")
	t.Setenv("SEED_ADMIN_PASSWORD", "bootstrap-admin")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	specs := cfg.SeedUsers()
	require.Len(t, specs, 1)
	require.Equal(t, "demo.admin", specs[0].Username)
	require.Equal(t, []string{"SYSTEM_USER"}, specs[0].Roles)
}

func TestPublicPrefixesCoverAuthAndOps(t *testing.T) {
	prefixes := PublicPrefixes()
	require.Contains(t, prefixes, "/healthz")
	require.Contains(t, prefixes, "/metrics")
	require.Contains(t, prefixes, "/admin/auth")
	require.Contains(t, prefixes, "/desktop/api/v1/auth")
}
