package middleware

import (
	"ProductKeeper/internal/access"
	"net/http"
)

// DenyFunc пишет ответ об отказе в доступе.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireOperation пропускает запрос, только если принципал может выполнить op.
// Предъявленный, но непроверяемый токен отклоняется с причиной проверки.
func RequireOperation(op access.Operation, deny DenyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := AssertionFromContext(r.Context())
			if !ok {
				if err := AuthErrorFromContext(r.Context()); err != nil {
					deny(w, r, err)
					return
				}
			}
			if err := access.AuthorizeOperation(a, op); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
