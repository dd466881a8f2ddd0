package db

import (
	"database/sql"
	"fmt"
)

// schema holds the fixed tables. Check records live in monthly partitions
// created on demand; see partition.go.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name  TEXT NOT NULL DEFAULT '',
    group_name    TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    approved      INTEGER NOT NULL DEFAULT 0,
    email         TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    stock_place TEXT NOT NULL,
    item_name   TEXT NOT NULL,
    minimum     TEXT NOT NULL DEFAULT '',
    min_value   TEXT,
    min_unit    TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT 'Common',
    sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS order_requests (
    id                 INTEGER PRIMARY KEY,
    item_id            INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    requested_by       TEXT NOT NULL,
    requested_by_group TEXT NOT NULL DEFAULT '',
    quantity_needed    TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT 'pending'
                       CHECK (status IN ('pending', 'ordered', 'received', 'cancelled', 'refused')),
    note               TEXT NOT NULL DEFAULT '',
    created_at         TEXT NOT NULL,
    ordered_by         TEXT NOT NULL DEFAULT '',
    ordered_at         TEXT NOT NULL DEFAULT '',
    resolved_by        TEXT NOT NULL DEFAULT '',
    resolved_at        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at INTEGER NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies migrations.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return migrate(db)
}
