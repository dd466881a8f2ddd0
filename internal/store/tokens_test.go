package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/labstock/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Revoking twice is a no-op.
	if err := RevokeToken(ctx, database, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}

	revoked, err = IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	revoked, _ = IsTokenRevoked(ctx, database, "jti-2")
	if revoked {
		t.Error("expected different token not to be revoked")
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	now := time.Now()
	RevokeToken(ctx, database, "live", now.Add(time.Hour))
	RevokeToken(ctx, database, "stale", now.Add(-time.Hour))

	// RevokeToken already purged "stale" after inserting it.
	revoked, _ := IsTokenRevoked(ctx, database, "stale")
	if revoked {
		t.Error("expected expired revocation to be purged")
	}

	n, err := PurgeExpiredTokens(ctx, database, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("PurgeExpiredTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
}
