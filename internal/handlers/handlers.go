package handlers

import (
	"ProductKeeper/internal/access"
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/config"
	"ProductKeeper/internal/middleware"
	"ProductKeeper/internal/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services зависимости HTTP-слоя.
type Services struct {
	Users    *service.UserService
	Products *service.ProductService
	Images   *service.ImageService
	Tokens   *auth.TokenManager
}

// NewHandler разводящий для хендлеров
func NewHandler(svc Services, logger *zap.SugaredLogger, cfg *config.Config) *Handler {
	r := chi.NewRouter()
	resp := &responder{logger: logger}

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithSecureHeaders(cfg.EnableHTTPS))
	r.Use(middleware.WithLogging(logger))
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithAuth(svc.Tokens))

	// Handlers
	userHandler := NewUserHandler(svc.Users, svc.Tokens, logger, cfg)
	productHandler := NewProductHandler(svc.Products, logger)
	imageHandler := NewImageHandler(svc.Images, logger)
	adminHandler := NewAdminHandler(svc.Images, logger)

	allow := func(op access.Operation) func(http.Handler) http.Handler {
		return middleware.RequireOperation(op, resp.writeError)
	}

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		limiter := loginLimiter(cfg.LoginRateLimit, resp)
		r.With(limiter).Post("/register", userHandler.Register)
		r.With(limiter).Post("/login", userHandler.Login)
		r.With(allow(access.OpReadSelf)).Get("/me", userHandler.Me)
	})

	// Product routes
	r.Route("/api/products", func(r chi.Router) {
		r.With(allow(access.OpCreateProduct)).Post("/", productHandler.Create)
		r.With(allow(access.OpReadProduct)).Get("/", productHandler.List)
		r.With(allow(access.OpReadProduct)).Get("/{id}", productHandler.Get)
		r.With(allow(access.OpUpdateProduct)).Put("/{id}", productHandler.Update)
		r.With(allow(access.OpUpdateProduct)).Patch("/{id}", productHandler.Update)
		r.With(allow(access.OpDeleteProduct)).Delete("/{id}", productHandler.Delete)
	})

	// Image routes
	r.Route("/api/images", func(r chi.Router) {
		r.With(allow(access.OpUploadImage)).Post("/upload/{productId}", imageHandler.Upload)
		r.With(allow(access.OpReadImage)).Get("/product/{productId}", imageHandler.ListForProduct)
		r.With(allow(access.OpReadImage)).Get("/{id}/file", imageHandler.File)
		r.With(allow(access.OpDeleteImage)).Delete("/{id}", imageHandler.Delete)
	})

	r.With(allow(access.OpReadReconciliation)).Get("/api/admin/reconciliation", adminHandler.Reconciliation)

	return &Handler{Router: r}
}

// loginLimiter ограничивает число запросов к /api/auth с одного IP в минуту.
func loginLimiter(perMinute int, resp *responder) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = 10
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			resp.writeJSON(w, http.StatusTooManyRequests, errorBody{
				Code:    apperr.CodeRateLimited,
				Message: "too many requests, try again later",
			})
		}),
	)
}
