package storetest

import (
	"context"
	"testing"

	"situs/internal/store"
)

// New returns a migrated store backed by a private in-memory sqlite database.
func New(t testing.TB) *store.Store {
	t.Helper()

	db, err := store.Open(store.Options{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	// every pooled connection to :memory: would be a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := store.New(db)
	if err := s.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return s
}
