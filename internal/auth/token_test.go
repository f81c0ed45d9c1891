package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinyldesk/vinyldesk/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("desktop-secret", "admin-secret", time.Hour)

	token, expiresAt, err := issuer.Issue(42, auth.PlatformDesktop)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := issuer.Verify(token, auth.PlatformDesktop)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestTokenPlatformIsolation(t *testing.T) {
	issuer := auth.NewTokenIssuer("desktop-secret", "admin-secret", time.Hour)

	desktopToken, _, err := issuer.Issue(7, auth.PlatformDesktop)
	require.NoError(t, err)

	// A well-formed, unexpired desktop token must fail the admin verifier.
	_, err = issuer.Verify(desktopToken, auth.PlatformAdmin)
	require.ErrorIs(t, err, auth.ErrWrongPlatformToken)

	adminToken, _, err := issuer.Issue(7, auth.PlatformAdmin)
	require.NoError(t, err)
	_, err = issuer.Verify(adminToken, auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrWrongPlatformToken)
}

func TestTokenExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := auth.NewTokenIssuer("desktop-secret", "admin-secret", time.Minute).WithClock(clock.Now)

	token, _, err := issuer.Issue(7, auth.PlatformDesktop)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = issuer.Verify(token, auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("desktop-secret", "admin-secret", time.Hour)

	_, err := issuer.Verify("not-a-token", auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	// Signed with a key no platform knows.
	foreign := auth.NewTokenIssuer("other-secret", "another-secret", time.Hour)
	token, _, err := foreign.Issue(7, auth.PlatformDesktop)
	require.NoError(t, err)
	_, err = issuer.Verify(token, auth.PlatformDesktop)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
