// Package testdb opens throwaway SQLite databases for tests.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	"github.com/axxaxinx/user-management-final-123/pkg/utils"
)

// Open returns a migrated database in t's temp dir, closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite", "auto"))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
