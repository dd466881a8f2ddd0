package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Check records are split into one table per calendar month, named
// checks_YYYY_MM after the month of their check date.

// PartitionPrefix is the common prefix of all partition tables.
const PartitionPrefix = "checks_"

// ErrInvalidPartition is returned for any table name that does not match
// the partition pattern. Such names must never reach SQL text.
var ErrInvalidPartition = errors.New("invalid partition name")

var partitionPattern = regexp.MustCompile(`^checks_\d{4}_(0[1-9]|1[0-2])$`)

// PartitionName returns the partition holding records dated date.
func PartitionName(date time.Time) string {
	return fmt.Sprintf("%s%04d_%02d", PartitionPrefix, date.Year(), int(date.Month()))
}

// PartitionForDate parses a YYYY-MM-DD check date and returns its partition.
func PartitionForDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid check date %q: expected YYYY-MM-DD", date)
	}
	return PartitionName(t), nil
}

// ValidatePartition refuses any name that is not a well-formed partition.
func ValidatePartition(name string) error {
	if !partitionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidPartition, name)
	}
	return nil
}

// EnsurePartition creates the partition table and its indexes if missing.
func EnsurePartition(ctx context.Context, q Querier, name string) error {
	if err := ValidatePartition(name); err != nil {
		return err
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id    INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    group_name TEXT NOT NULL,
    checked_by TEXT NOT NULL,
    quantity   TEXT NOT NULL,
    status     TEXT NOT NULL CHECK (status IN ('ok', 'low', 'empty', 'unknown')),
    note       TEXT NOT NULL DEFAULT '',
    check_date TEXT NOT NULL,
    created_at TEXT NOT NULL
)`, name),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_item_group" ON "%s"(item_id, group_name)`, name, name),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_date" ON "%s"(check_date)`, name, name),
	}
	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating partition %s: %w", name, err)
		}
	}
	return nil
}

// ListPartitions returns all existing partitions in ascending month order.
func ListPartitions(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE 'checks\_%' ESCAPE '\'`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning partition name: %w", err)
		}
		if ValidatePartition(name) == nil {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// PartitionExists reports whether the named partition table exists.
func PartitionExists(ctx context.Context, q Querier, name string) (bool, error) {
	if err := ValidatePartition(name); err != nil {
		return false, err
	}
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking partition %s: %w", name, err)
	}
	return n > 0, nil
}
