// Package testenv provides a migrated Postgres database for integration tests.
//
// Tests using it are skipped unless FOODGRAM_TEST_DATABASE_URL is set.
package testenv

import (
	"os"
	"testing"

	"foodgram/internal/db"

	"gorm.io/gorm"
)

const envKey = "FOODGRAM_TEST_DATABASE_URL"

// DB returns a handle on an empty, migrated database. Tables are truncated
// before returning and again when t finishes.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(envKey)
	if dsn == "" {
		t.Skipf("%s not set; skipping database test", envKey)
	}

	gdb, err := db.Open(dsn, true)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		ClearTables(t, gdb)
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ClearTables(t, gdb)
	return gdb
}

func ClearTables(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	for _, command := range []string{
		`TRUNCATE "users" RESTART IDENTITY CASCADE`,
		`TRUNCATE "tags" RESTART IDENTITY CASCADE`,
		`TRUNCATE "ingredients" RESTART IDENTITY CASCADE`,
		// by cascade, recipes and every relation table are emptied too.
	} {
		if err := gdb.Exec(command).Error; err != nil {
			t.Errorf("fail to clean-up tables: %v", err)
		}
	}
}
