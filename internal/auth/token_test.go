package auth

import (
	"strings"
	"testing"
	"time"

	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestTokenManager_RoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager("secret").WithClock(fixedClock(start))

	for _, role := range model.AllRoles() {
		token, err := issuer.Issue("user-1", role)
		require.NoError(t, err)

		// прямо перед истечением — токен ещё действителен
		verifier := issuer.WithClock(fixedClock(start.Add(TokenTTL - time.Second)))
		a, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", a.PrincipalID)
		assert.Equal(t, role, a.Role)
		assert.Equal(t, start, a.IssuedAt.UTC())
		assert.Equal(t, start.Add(TokenTTL), a.ExpiresAt.UTC())
	}
}

func TestTokenManager_Expired(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager("secret").WithClock(fixedClock(start))
	token, err := issuer.Issue("user-1", model.RoleEditor)
	require.NoError(t, err)

	// ровно в момент exp токен уже недействителен
	for _, at := range []time.Time{start.Add(TokenTTL), start.Add(TokenTTL + time.Hour)} {
		_, err = issuer.WithClock(fixedClock(at)).Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	}
}

func TestTokenManager_InvalidSignature(t *testing.T) {
	token, err := NewTokenManager("secret-A").Issue("user-1", model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-B").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// подмена полезной нагрузки ломает подпись
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, err := NewTokenManager("other").Issue("user-2", model.RoleAdmin)
	require.NoError(t, err)
	tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
	_, err = NewTokenManager("secret-A").Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	m := NewTokenManager("secret")
	for _, raw := range []string{"", "abc", "a.b", "not.a.jwt"} {
		_, err := m.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformedToken, raw)
	}
}

func TestTokenManager_RejectsUnknownRoleAndAlg(t *testing.T) {
	m := NewTokenManager("secret")
	now := time.Now()

	claims := Claims{
		UserID: "u1",
		Role:   "SUPERUSER",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrMalformedToken)

	claims.Role = string(model.RoleAdmin)
	raw, err = jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_IssueRequiresKnownRole(t *testing.T) {
	m := NewTokenManager("secret")
	_, err := m.Issue("", model.RoleAdmin)
	assert.Error(t, err)
	_, err = m.Issue("u1", model.Role("ROOT"))
	assert.Error(t, err)
}
