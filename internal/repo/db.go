package repo

import (
	"ProductKeeper/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД по DSN и применяет миграции.
// DSN вида postgres://... или host=... открывается через pgx, всё остальное — SQLite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if isPostgresDSN(dsn) {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет таблицы всех серверных моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Image{},
		&model.Blob{},
		&model.ReconciliationEvent{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
