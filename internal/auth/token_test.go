package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		ValidationTokenSecret: "validation-secret",
		RefreshCookieName:     "refreshToken",
		BcryptCost:            4,
	}
}

func testPayload() TokenPayload {
	return TokenPayload{
		ID:           "user-1",
		Email:        "jane@example.com",
		Name:         domain.Name{First: "Jane", Last: "Doe"},
		Role:         domain.RoleUser,
		TokenVersion: 0,
	}
}

func TestIssuerRoundTrip(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	cases := []struct {
		name  string
		class Class
		sign  func(TokenPayload) (string, error)
		ttl   time.Duration
	}{
		{"access", ClassAccess, issuer.SignAccess, AccessTokenTTL},
		{"refresh", ClassRefresh, issuer.SignRefresh, RefreshTokenTTL},
		{"validation", ClassValidation, issuer.SignValidation, ValidationTokenTTL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := tc.sign(testPayload())
			require.NoError(t, err)

			payload, err := issuer.Verify(tc.class, token)
			require.NoError(t, err)
			assert.Equal(t, "user-1", payload.ID)
			assert.Equal(t, "jane@example.com", payload.Email)
			assert.Equal(t, domain.Name{First: "Jane", Last: "Doe"}, payload.Name)
			assert.Equal(t, domain.RoleUser, payload.Role)
			assert.Equal(t, 0, payload.TokenVersion)

			require.NotNil(t, payload.IssuedAt)
			require.NotNil(t, payload.ExpiresAt)
			assert.Equal(t, tc.ttl, payload.ExpiresAt.Sub(payload.IssuedAt.Time))
		})
	}
}

func TestIssuerRejectsCrossClassTokens(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	access, err := issuer.SignAccess(testPayload())
	require.NoError(t, err)
	refresh, err := issuer.SignRefresh(testPayload())
	require.NoError(t, err)
	validation, err := issuer.SignValidation(testPayload())
	require.NoError(t, err)

	for _, class := range []Class{ClassRefresh, ClassValidation} {
		_, err := issuer.Verify(class, access)
		assert.ErrorIs(t, err, ErrTokenInvalid, "access token verified as %s", class)
	}
	_, err = issuer.Verify(ClassAccess, refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = issuer.Verify(ClassAccess, validation)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuerRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	payload := testPayload()
	payload.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	payload.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &payload).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, verr := issuer.Verify(ClassAccess, expired)
	assert.ErrorIs(t, verr, ErrTokenExpired)
}

func TestIssuerRejectsMalformedToken(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	_, err := issuer.Verify(ClassAccess, "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuerRejectsUnknownRole(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	payload := testPayload()
	payload.Role = domain.Role("superuser")
	payload.IssuedAt = jwt.NewNumericDate(time.Now())
	payload.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &payload).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, verr := issuer.Verify(ClassAccess, token)
	assert.ErrorIs(t, verr, ErrTokenInvalid)
}

func TestExpirationOfDecodesWithoutVerification(t *testing.T) {
	issuer := NewIssuer(testAuthConfig())

	refresh, err := issuer.SignRefresh(testPayload())
	require.NoError(t, err)

	expiresAt, err := issuer.ExpirationOf(refresh)
	require.NoError(t, err)

	payload, err := issuer.Verify(ClassRefresh, refresh)
	require.NoError(t, err)
	assert.True(t, expiresAt.Equal(payload.ExpiresAt.Time))

	_, err = issuer.ExpirationOf("garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
