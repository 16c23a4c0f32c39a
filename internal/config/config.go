package config

import (
	"flag"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultImageMaxBytes — потолок размера изображения по умолчанию (5 MiB).
const DefaultImageMaxBytes int64 = 5 * 1024 * 1024

type Config struct {
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	LogJSON     bool   `env:"LOG_JSON"`

	// Хранилище файлов изображений: "fs" (каталог UploadDir) или "db" (таблица blobs)
	BlobStore string `env:"BLOB_STORE"`
	UploadDir string `env:"UPLOAD_DIR"`

	ImageMaxBytes   int64    `env:"IMAGE_MAX_BYTES"`
	ImageMimeTypes  []string `env:"IMAGE_MIME_TYPES" envSeparator:","`
	ImageCategories []string `env:"IMAGE_CATEGORIES" envSeparator:","`

	// При пустом адресе журнал сверки хранится в БД
	ReconcileRedisAddr string `env:"RECONCILE_REDIS_ADDR"`

	// Запросов в минуту с одного IP на /api/auth/*
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT"`

	ServerURL string `env:"-"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера в формате host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS redirect and secure cookies")
	flag.StringVar(&cfg.BlobStore, "blob-store", cfg.BlobStore, "хранилище файлов: fs или db")
	flag.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "каталог для файлов изображений")
	flag.StringVar(&cfg.ReconcileRedisAddr, "reconcile-redis", cfg.ReconcileRedisAddr, "redis address for the reconciliation log")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "productkeeper.db"
	}
	// BaseURL должен быть в виде "address:port" (без схемы и пути), иначе значение по умолчанию.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	cfg.BlobStore = strings.ToLower(strings.TrimSpace(cfg.BlobStore))
	if cfg.BlobStore != "db" {
		cfg.BlobStore = "fs"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.ImageMaxBytes <= 0 {
		cfg.ImageMaxBytes = DefaultImageMaxBytes
	}
	cfg.ImageMimeTypes = normalizeList(cfg.ImageMimeTypes, strings.ToLower)
	if len(cfg.ImageMimeTypes) == 0 {
		cfg.ImageMimeTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	cfg.ImageCategories = normalizeList(cfg.ImageCategories, strings.ToUpper)
	if len(cfg.ImageCategories) == 0 {
		cfg.ImageCategories = []string{"GENERAL", "DAMAGE_PRIMARY", "DAMAGE_SECONDARY"}
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	return cfg
}

func normalizeList(in []string, norm func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = norm(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
