// Package testutil provisions isolated stores, an HTTP client bound to
// them, and entity factories for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
)

func init() {
	// hashing at full cost dominates test time
	auth.Cost = bcrypt.MinCost
}

// Store is a fresh in-memory database owned by one test. It satisfies
// db.SessionProvider so the API can be pointed at it directly.
type Store struct {
	DB  *gorm.DB
	DSN string
}

var _ db.SessionProvider = (*Store)(nil)

// NewStore creates an empty, migrated store. The schema is dropped and the
// connection closed when the test ends; a teardown failure fails the test.
func NewStore(t testing.TB) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        db.NowFunc,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("testutil: open store: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("testutil: open store: %v", err)
	}
	// the in-memory database lives as long as one connection holds it
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Migrate(gdb); err != nil {
		_ = sqlDB.Close()
		t.Fatalf("testutil: migrate store: %v", err)
	}

	t.Cleanup(func() {
		if err := db.DropAll(gdb); err != nil {
			t.Fatalf("testutil: drop store: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("testutil: close store: %v", err)
		}
	})

	return &Store{DB: gdb, DSN: dsn}
}

// Acquire hands out a session on the store, bound to ctx.
func (s *Store) Acquire(ctx context.Context) (*gorm.DB, func(), error) {
	return db.NewSessionProvider(s.DB).Acquire(ctx)
}
