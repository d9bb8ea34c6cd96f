// Package dbtest opens throwaway in-memory sqlite databases with the full schema.
package dbtest

import (
	"testing"

	infraDB "coopfin-loan-engine/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a fresh database. One connection only: every ":memory:"
// connection would otherwise get its own empty database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := infraDB.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
