package middleware

import (
	"ProductKeeper/internal/auth"
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const (
	assertionKey ctxKey = iota
	authErrorKey
)

// AuthCookieName имя cookie с токеном сессии.
const AuthCookieName = "auth_token"

// WithAuth восстанавливает Assertion из заголовка Authorization: Bearer или cookie auth_token.
// Запрос не отклоняется: решение принимает RequireOperation.
func WithAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			a, err := tokens.Verify(raw)
			if err != nil {
				ctx = context.WithValue(ctx, authErrorKey, err)
			} else {
				ctx = context.WithValue(ctx, assertionKey, a)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetLoginCookie выставляет cookie с токеном на срок жизни токена.
func SetLoginCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AssertionFromContext возвращает проверенное утверждение, если токен был валиден.
func AssertionFromContext(ctx context.Context) (*auth.Assertion, bool) {
	a, ok := ctx.Value(assertionKey).(*auth.Assertion)
	return a, ok && a != nil
}

// AuthErrorFromContext возвращает ошибку проверки предъявленного токена.
func AuthErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(authErrorKey).(error)
	return err
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value
	}
	return ""
}
