// Package testutil holds fixtures shared by the package tests: a migrated SQLite
// database and a builder for synthetic CMED extract rows.
package testutil

import (
	"path/filepath"
	"testing"

	"precomed/internal/infra"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a fresh file-backed SQLite database under t.TempDir() and migrates the
// full schema onto it.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cmed.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := infra.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}
