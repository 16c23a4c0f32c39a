package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// WithSecureHeaders выставляет защитные заголовки, при https включает редирект на TLS.
func WithSecureHeaders(https bool) func(http.Handler) http.Handler {
	return secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        https,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	}).Handler
}
