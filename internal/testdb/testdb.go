// Package testdb opens a migrated, throwaway SQLite database for tests.
package testdb

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a fresh in-memory database with every migration applied. The
// pool is pinned to one connection, so concurrent transactions queue up
// behind each other the way SQLite's single writer would make them anyway.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testdb: sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, err := migration.New(db, nil).Run(); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return db
}
