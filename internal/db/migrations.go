package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: at most one open order request per item.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_order_requests_open
	     ON order_requests(item_id) WHERE status IN ('pending', 'ordered')`,
	// Migration 2: order listing is newest first.
	`CREATE INDEX IF NOT EXISTS idx_order_requests_created
	     ON order_requests(created_at)`,
	// Migration 3: dashboard iterates items in catalog order.
	`CREATE INDEX IF NOT EXISTS idx_items_sort_order
	     ON items(sort_order)`,
}

func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
