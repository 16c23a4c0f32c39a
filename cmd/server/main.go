package main

import (
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/config"
	"ProductKeeper/internal/handlers"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"ProductKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap: JSON в проде, консоль при разработке
	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Debugw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobs, err := newBlobStore(cfg, gormDB)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "store", cfg.BlobStore, "error", err)
	}

	recon := repo.NewReconciliationLog(gormDB)
	if cfg.ReconcileRedisAddr != "" {
		client, err := repo.NewRedisClient(ctx, cfg.ReconcileRedisAddr)
		if err != nil {
			sugar.Fatalw("failed to connect to redis", "addr", cfg.ReconcileRedisAddr, "error", err)
		}
		defer client.Close()
		recon = repo.NewRedisReconciliationLog(client)
	}

	productRepo := repo.NewProductRepository(gormDB)
	imageService := service.NewImageService(
		productRepo,
		repo.NewImageRepository(gormDB),
		blobs,
		recon,
		imagePolicy(cfg),
		sugar,
	)
	h := handlers.NewHandler(handlers.Services{
		Users:    service.NewUserService(repo.NewUserRepository(gormDB)),
		Products: service.NewProductService(productRepo, imageService, sugar),
		Images:   imageService,
		Tokens:   auth.NewTokenManager(cfg.AuthSecret),
	}, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("Starting server",
		"addr", cfg.BaseURL,
		"version", version,
		"build_date", buildDate,
	)
	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"BlobStore", cfg.BlobStore,
		"ImageMaxBytes", cfg.ImageMaxBytes,
		"ImageMimeTypes", cfg.ImageMimeTypes,
		"ImageCategories", cfg.ImageCategories,
		"RedisReconciliation", cfg.ReconcileRedisAddr != "",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	case <-ctx.Done():
		sugar.Infow("Shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}

func newLogger(jsonOutput bool) (*zap.Logger, error) {
	if jsonOutput {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newBlobStore(cfg *config.Config, db *gorm.DB) (repo.BlobRepository, error) {
	if cfg.BlobStore == "db" {
		return repo.NewBlobRepository(db), nil
	}
	return repo.NewFSBlobRepository(cfg.UploadDir)
}

func imagePolicy(cfg *config.Config) service.ImagePolicy {
	categories := make([]model.Category, 0, len(cfg.ImageCategories))
	for _, c := range cfg.ImageCategories {
		categories = append(categories, model.NormalizeCategory(c))
	}
	return service.ImagePolicy{
		AllowedMimeTypes: cfg.ImageMimeTypes,
		MaxSizeBytes:     cfg.ImageMaxBytes,
		Categories:       categories,
	}
}
