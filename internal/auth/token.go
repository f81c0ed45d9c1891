package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed token payload: user id plus issued-at and expiry.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies platform-scoped tokens. The signing key is
// selected by the platform whose route is being accessed, never by
// inspecting the token itself.
type TokenIssuer struct {
	secrets map[Platform][]byte
	ttl     time.Duration
	now     func() time.Time
}

// NewTokenIssuer constructs an issuer with one HS256 secret per platform.
func NewTokenIssuer(desktopSecret, adminSecret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = TokenExpiresIn
	}
	return &TokenIssuer{
		secrets: map[Platform][]byte{
			PlatformDesktop: []byte(desktopSecret),
			PlatformAdmin:   []byte(adminSecret),
		},
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock overrides the issuer clock, for tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the user scoped to the given platform.
func (t *TokenIssuer) Issue(userID int64, platform Platform) (string, time.Time, error) {
	secret, ok := t.secrets[platform]
	if !ok {
		return "", time.Time{}, fmt.Errorf("auth: unknown platform %q", platform)
	}
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token against the platform's secret and returns the
// user id carried in the claims. A structurally valid token signed for a
// different platform yields ErrWrongPlatformToken.
func (t *TokenIssuer) Verify(token string, platform Platform) (int64, error) {
	secret, ok := t.secrets[platform]
	if !ok {
		return 0, fmt.Errorf("auth: unknown platform %q", platform)
	}
	claims, err := t.parse(token, secret)
	if err == nil {
		return claims.UserID, nil
	}
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return 0, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		// Distinguish a token signed with another platform's key from garbage.
		for p, s := range t.secrets {
			if p == platform {
				continue
			}
			if _, crossErr := t.parse(token, s); crossErr == nil {
				return 0, ErrWrongPlatformToken
			}
		}
		return 0, ErrInvalidToken
	default:
		return 0, ErrInvalidToken
	}
}

func (t *TokenIssuer) parse(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
