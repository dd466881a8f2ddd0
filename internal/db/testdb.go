package db

import (
	"context"
	"database/sql"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied
// and the given check partitions created.
func NewTestDB(t *testing.T, partitions ...string) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}

	for _, p := range partitions {
		if err := EnsurePartition(context.Background(), db, p); err != nil {
			t.Fatalf("creating test partition %s: %v", p, err)
		}
	}

	return db
}
