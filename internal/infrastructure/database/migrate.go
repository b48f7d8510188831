package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate brings the schema up to date. Neither mode drops existing tables.
//
//	auto      gorm AutoMigrate, adds missing tables, columns and constraints
//	versioned goose migrations embedded in the binary
func Migrate(ctx context.Context, db *gorm.DB, driver, mode string) error {
	switch mode {
	case "versioned":
		return RunMigrations(ctx, db, driver)
	case "auto", "":
		if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		applog.Info("auto migration completed")
		return nil
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

// RunMigrations applies the embedded goose migrations for driver.
func RunMigrations(ctx context.Context, db *gorm.DB, driver string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	dialect, dir := "mysql", "migrations/mysql"
	if driver == "sqlite" {
		dialect, dir = "sqlite3", "migrations/sqlite"
	}

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err == nil {
		applog.Info("versioned migration completed, schema version %d", version)
	}
	return nil
}
