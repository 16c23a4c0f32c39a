package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Сжимаются только текстовые ответы.
var compressor = chimw.NewCompressor(5, "application/json", "text/plain", "text/html")

// WithGzip сжимает ответ, если клиент прислал Accept-Encoding: gzip.
func WithGzip(next http.Handler) http.Handler {
	return compressor.Handler(next)
}
