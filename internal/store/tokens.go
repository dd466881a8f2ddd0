package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken puts a token's JTI on the deny list until the token would
// have expired anyway. Entries past their expiry are purged on the way.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	_, _ = PurgeExpiredTokens(ctx, db, time.Now())
	return nil
}

// PurgeExpiredTokens removes deny-list entries whose token expired before now.
func PurgeExpiredTokens(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	return res.RowsAffected()
}

// IsTokenRevoked reports whether jti is on the deny list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var revoked bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
