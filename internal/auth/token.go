// Package auth issues and verifies the signed session tokens.
package auth

import (
	"errors"
	"time"

	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL — фиксированный срок жизни токена.
const TokenTTL = 7 * 24 * time.Hour

var (
	ErrInvalidToken   = apperr.Authentication(apperr.CodeInvalidToken, "token signature is invalid")
	ErrExpiredToken   = apperr.Authentication(apperr.CodeExpiredToken, "token has expired")
	ErrMalformedToken = apperr.Authentication(apperr.CodeMalformedToken, "token is malformed")
)

// Assertion — проверенное утверждение о принципале, восстановленное из токена.
type Assertion struct {
	PrincipalID string
	Role        model.Role
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Claims полезная нагрузка JWT.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager подписывает и проверяет токены. Не хранит состояния и не делает I/O.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager создаёт TokenManager с секретом подписи.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// WithClock подменяет источник времени (для тестов).
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	return &TokenManager{secret: m.secret, now: now}
}

// Issue выпускает токен для (principalID, role).
func (m *TokenManager) Issue(principalID string, role model.Role) (string, error) {
	if principalID == "" || !role.Valid() {
		return "", errors.New("auth: principal id and a known role are required")
	}
	iat := m.now().Truncate(time.Second)
	claims := Claims{
		UserID: principalID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify проверяет подпись и срок действия токена.
func (m *TokenManager) Verify(raw string) (*Assertion, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	role, ok := model.ParseRole(claims.Role)
	if !ok || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, ErrMalformedToken
	}
	return &Assertion{
		PrincipalID: claims.UserID,
		Role:        role,
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
