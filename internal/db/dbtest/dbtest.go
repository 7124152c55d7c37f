// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/db"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t, File(t)+"?_pragma=busy_timeout(5000)")
}

// File returns a dsn for a fresh database file. Without a busy_timeout
// pragma, lock conflicts fail immediately.
func File(t testing.TB) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "test.db")
}

// Open opens and migrates dsn; the handle is closed when the test ends.
func Open(t testing.TB, dsn string) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), dsn, nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(gdb)
	})
	return gdb
}
