package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/status"
)

// History page sizes.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Aliased so ORDER BY resolves the same way on a single partition and on a
// UNION ALL of several.
const checkRowColumns = `c.id AS id, c.item_id AS item_id, c.group_name AS group_name,
       c.checked_by AS checked_by, c.quantity AS quantity, c.status AS status, c.note AS note,
       c.check_date AS check_date, c.created_at AS created_at, i.item_name AS item_name,
       i.stock_place AS stock_place, i.minimum AS minimum, i.sort_order AS sort_order`

func scanCheckRow(row interface{ Scan(...any) error }, r *model.CheckRow) error {
	return row.Scan(&r.ID, &r.ItemID, &r.GroupName, &r.CheckedBy, &r.Quantity, &r.Status,
		&r.Note, &r.CheckDate, &r.CreatedAt, &r.ItemName, &r.StockPlace, &r.Minimum, &r.SortOrder)
}

func scanCheckRecord(row interface{ Scan(...any) error }, r *model.CheckRecord) error {
	return row.Scan(&r.ID, &r.ItemID, &r.GroupName, &r.CheckedBy, &r.Quantity, &r.Status,
		&r.Note, &r.CheckDate, &r.CreatedAt)
}

// SubmitResult summarizes a stored submission.
type SubmitResult struct {
	Partition string                `json:"partition"`
	Saved     int                   `json:"saved"`
	Skipped   int                   `json:"skipped"`
	Statuses  map[status.Status]int `json:"statuses"`
}

// SubmitChecks stores one group's stock check for a date, replacing any
// earlier records of that group and date. Entries with an empty quantity
// and items hidden from the group by visible are skipped. Any other invalid
// entry rejects the whole submission with a *model.ValidationError listing
// every problem; nothing is written in that case.
func SubmitChecks(ctx context.Context, database *sql.DB, sub model.Submission, visible func(model.Item) bool, createdAt string) (*SubmitResult, error) {
	partition, err := db.PartitionForDate(sub.CheckDate)
	if err != nil {
		return nil, model.Invalid(err.Error())
	}
	if strings.TrimSpace(sub.GroupName) == "" {
		return nil, model.Invalid("group is required")
	}

	items, err := ListItems(ctx, database)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	type row struct {
		entry  model.CheckEntry
		status status.Status
	}
	var (
		rows     []row
		problems []string
		seen     = make(map[int64]bool)
		skipped  int
	)
	for _, e := range sub.Entries {
		item, ok := byID[e.ItemID]
		if !ok {
			problems = append(problems, fmt.Sprintf("item %d: no such item", e.ItemID))
			continue
		}
		if seen[e.ItemID] {
			problems = append(problems, fmt.Sprintf("%s: submitted more than once", item.ItemName))
			continue
		}
		seen[e.ItemID] = true

		if visible != nil && !visible(item) {
			skipped++
			continue
		}
		e.Quantity = strings.TrimSpace(e.Quantity)
		e.Note = strings.TrimSpace(e.Note)
		if e.Quantity == "" {
			skipped++
			continue
		}
		if _, err := status.ParseQuantity(e.Quantity); err != nil {
			problems = append(problems, fmt.Sprintf("%s: not a valid number", item.ItemName))
			continue
		}
		rows = append(rows, row{entry: e, status: status.Compute(e.Quantity, item.MinValue)})
	}

	if len(problems) > 0 {
		return nil, &model.ValidationError{Problems: problems}
	}
	if len(rows) == 0 {
		return nil, model.Invalid("no items filled; enter at least one quantity")
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.EnsurePartition(ctx, tx, partition); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM "%s" WHERE group_name = ? AND check_date = ?`, partition),
		sub.GroupName, sub.CheckDate,
	)
	if err != nil {
		return nil, fmt.Errorf("replacing previous checks: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO "%s"
		(item_id, group_name, checked_by, quantity, status, note, check_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, partition)
	statuses := make(map[status.Status]int)
	for _, r := range rows {
		statuses[r.status]++
		_, err := tx.ExecContext(ctx, insert,
			r.entry.ItemID, sub.GroupName, sub.CheckedBy, r.entry.Quantity, string(r.status),
			r.entry.Note, sub.CheckDate, createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting check: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &SubmitResult{Partition: partition, Saved: len(rows), Skipped: skipped, Statuses: statuses}, nil
}

// existingPartition returns the partition for date, or "" if it has not
// been created yet.
func existingPartition(ctx context.Context, database *sql.DB, date string) (string, error) {
	partition, err := db.PartitionForDate(date)
	if err != nil {
		return "", model.Invalid(err.Error())
	}
	ok, err := db.PartitionExists(ctx, database, partition)
	if err != nil || !ok {
		return "", err
	}
	return partition, nil
}

// LatestChecks returns group's latest record per item on date, keyed by item.
func LatestChecks(ctx context.Context, database *sql.DB, group, date string) (map[int64]model.CheckRecord, error) {
	all, err := LatestChecksAcrossGroups(ctx, database, []string{group}, date)
	if err != nil {
		return nil, err
	}
	latest := make(map[int64]model.CheckRecord, len(all))
	for k, r := range all {
		latest[k.ItemID] = r
	}
	return latest, nil
}

// LatestChecksAcrossGroups returns the latest record per (item, group) on
// date for the given groups, or for every group when groups is empty. Ties
// on the same item, group and date go to the highest id.
func LatestChecksAcrossGroups(ctx context.Context, database *sql.DB, groups []string, date string) (map[model.CheckKey]model.CheckRecord, error) {
	latest := make(map[model.CheckKey]model.CheckRecord)

	partition, err := existingPartition(ctx, database, date)
	if err != nil || partition == "" {
		return latest, err
	}

	where := "check_date = ?"
	args := []any{date}
	if len(groups) > 0 {
		where += " AND group_name IN (?" + strings.Repeat(", ?", len(groups)-1) + ")"
		for _, g := range groups {
			args = append(args, g)
		}
	}

	rows, err := database.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.item_id, c.group_name, c.checked_by, c.quantity, c.status, c.note,
		       c.check_date, c.created_at
		FROM "%[1]s" c
		JOIN (
		    SELECT MAX(id) AS max_id FROM "%[1]s"
		    WHERE %[2]s
		    GROUP BY item_id, group_name
		) latest ON c.id = latest.max_id`, partition, where), args...)
	if err != nil {
		return nil, fmt.Errorf("querying latest checks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.CheckRecord
		if err := scanCheckRecord(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		latest[model.CheckKey{ItemID: r.ItemID, GroupName: r.GroupName}] = r
	}
	return latest, rows.Err()
}

// LastCheckedDate returns the most recent check date of group across all
// partitions, or "" if the group never submitted.
func LastCheckedDate(ctx context.Context, database *sql.DB, group string) (string, error) {
	partitions, err := db.ListPartitions(ctx, database)
	if err != nil {
		return "", err
	}

	// Partitions are month-ordered, so the newest one with a hit wins.
	for i := len(partitions) - 1; i >= 0; i-- {
		var last sql.NullString
		err := database.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT MAX(check_date) FROM "%s" WHERE group_name = ?`, partitions[i]), group,
		).Scan(&last)
		if err != nil {
			return "", fmt.Errorf("querying last check date: %w", err)
		}
		if last.Valid {
			return last.String, nil
		}
	}
	return "", nil
}

// LastCheckedDates returns LastCheckedDate for each group. Groups that
// never submitted map to "".
func LastCheckedDates(ctx context.Context, database *sql.DB, groups []string) (map[string]string, error) {
	dates := make(map[string]string, len(groups))
	for _, g := range groups {
		d, err := LastCheckedDate(ctx, database, g)
		if err != nil {
			return nil, err
		}
		dates[g] = d
	}
	return dates, nil
}

// HistoryFilter selects a page of check history. Empty fields match all.
type HistoryFilter struct {
	Group    string
	Date     string
	Page     int
	PageSize int
}

// HistoryPage is one page of check history, newest date first.
type HistoryPage struct {
	Rows       []model.CheckRow `json:"rows"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ListCheckHistory returns a page of check records across partitions. A date
// filter restricts the scan to that date's partition; a missing partition
// yields an empty page.
func ListCheckHistory(ctx context.Context, database *sql.DB, f HistoryFilter) (*HistoryPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	page := &HistoryPage{Rows: []model.CheckRow{}, Page: f.Page, PageSize: f.PageSize, TotalPages: 1}

	var partitions []string
	if f.Date != "" {
		partition, err := existingPartition(ctx, database, f.Date)
		if err != nil {
			return nil, err
		}
		if partition != "" {
			partitions = []string{partition}
		}
	} else {
		var err error
		partitions, err = db.ListPartitions(ctx, database)
		if err != nil {
			return nil, err
		}
	}
	if len(partitions) == 0 {
		return page, nil
	}

	where := "WHERE 1=1"
	var filterArgs []any
	if f.Group != "" {
		where += " AND c.group_name = ?"
		filterArgs = append(filterArgs, f.Group)
	}
	if f.Date != "" {
		where += " AND c.check_date = ?"
		filterArgs = append(filterArgs, f.Date)
	}

	parts := make([]string, len(partitions))
	var args []any
	for i, p := range partitions {
		parts[i] = fmt.Sprintf(`SELECT %s FROM "%s" c JOIN items i ON c.item_id = i.id %s`,
			checkRowColumns, p, where)
		args = append(args, filterArgs...)
	}
	union := strings.Join(parts, "\nUNION ALL\n")

	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (`+union+`)`, args...,
	).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("counting check history: %w", err)
	}
	page.TotalPages = max(1, (page.Total+f.PageSize-1)/f.PageSize)

	rows, err := database.QueryContext(ctx,
		union+"\nORDER BY check_date DESC, item_name, group_name, id LIMIT ? OFFSET ?",
		append(args, f.PageSize, (f.Page-1)*f.PageSize)...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying check history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.CheckRow
		if err := scanCheckRow(rows, &r); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		page.Rows = append(page.Rows, r)
	}
	return page, rows.Err()
}

// ListCheckDates returns every distinct check date, newest first.
func ListCheckDates(ctx context.Context, database *sql.DB) ([]string, error) {
	partitions, err := db.ListPartitions(ctx, database)
	if err != nil {
		return nil, err
	}
	dates := []string{}
	if len(partitions) == 0 {
		return dates, nil
	}

	parts := make([]string, len(partitions))
	for i, p := range partitions {
		parts[i] = fmt.Sprintf(`SELECT check_date FROM "%s"`, p)
	}
	rows, err := database.QueryContext(ctx,
		strings.Join(parts, " UNION ")+" ORDER BY check_date DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing check dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning check date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// DeleteCheck deletes one record by id. With a date only that date's
// partition is searched; without one every partition is.
func DeleteCheck(ctx context.Context, database *sql.DB, id int64, date string) (int64, error) {
	var partitions []string
	if date != "" {
		partition, err := existingPartition(ctx, database, date)
		if err != nil {
			return 0, err
		}
		if partition != "" {
			partitions = []string{partition}
		}
	} else {
		var err error
		partitions, err = db.ListPartitions(ctx, database)
		if err != nil {
			return 0, err
		}
	}

	return deleteFromPartitions(ctx, database, partitions, `id = ?`, id)
}

// DeleteChecksBulk deletes all records on date, optionally only group's.
// The date is mandatory.
func DeleteChecksBulk(ctx context.Context, database *sql.DB, group, date string) (int64, error) {
	if date == "" {
		return 0, model.Invalid("a date is required for bulk deletion")
	}
	partition, err := existingPartition(ctx, database, date)
	if err != nil || partition == "" {
		return 0, err
	}

	if group != "" {
		return deleteFromPartitions(ctx, database, []string{partition},
			`group_name = ? AND check_date = ?`, group, date)
	}
	return deleteFromPartitions(ctx, database, []string{partition}, `check_date = ?`, date)
}

// DeleteAllChecks empties every partition and reports how many records were
// removed from how many partitions. The tables themselves are kept.
func DeleteAllChecks(ctx context.Context, database *sql.DB) (int64, int, error) {
	partitions, err := db.ListPartitions(ctx, database)
	if err != nil {
		return 0, 0, err
	}
	n, err := deleteFromPartitions(ctx, database, partitions, `1=1`)
	if err != nil {
		return 0, 0, err
	}
	return n, len(partitions), nil
}

func deleteFromPartitions(ctx context.Context, database *sql.DB, partitions []string, where string, args ...any) (int64, error) {
	if len(partitions) == 0 {
		return 0, nil
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, p := range partitions {
		if err := db.ValidatePartition(p); err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM "%s" WHERE %s`, p, where), args...)
		if err != nil {
			return 0, fmt.Errorf("deleting checks from %s: %w", p, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("deleting checks from %s: %w", p, err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return total, nil
}

// ExportChecks returns the latest record per (item, group, date), for one
// date or for all dates, ordered newest date first, then catalog order,
// then group.
func ExportChecks(ctx context.Context, database *sql.DB, date string) ([]model.CheckRow, error) {
	var partitions []string
	if date != "" {
		partition, err := existingPartition(ctx, database, date)
		if err != nil {
			return nil, err
		}
		if partition != "" {
			partitions = []string{partition}
		}
	} else {
		var err error
		partitions, err = db.ListPartitions(ctx, database)
		if err != nil {
			return nil, err
		}
	}

	rows := []model.CheckRow{}
	if len(partitions) == 0 {
		return rows, nil
	}

	inner := ""
	var filterArgs []any
	if date != "" {
		inner = "WHERE check_date = ?"
		filterArgs = append(filterArgs, date)
	}

	parts := make([]string, len(partitions))
	var args []any
	for i, p := range partitions {
		parts[i] = fmt.Sprintf(`SELECT %[1]s FROM "%[2]s" c
			JOIN items i ON c.item_id = i.id
			JOIN (
			    SELECT MAX(id) AS max_id FROM "%[2]s" %[3]s
			    GROUP BY item_id, group_name, check_date
			) latest ON c.id = latest.max_id`, checkRowColumns, p, inner)
		args = append(args, filterArgs...)
	}

	res, err := database.QueryContext(ctx,
		strings.Join(parts, "\nUNION ALL\n")+"\nORDER BY check_date DESC, sort_order, group_name",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying export rows: %w", err)
	}
	defer res.Close()

	for res.Next() {
		var r model.CheckRow
		if err := scanCheckRow(res, &r); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, res.Err()
}

// CountChecks returns the number of records in each partition.
func CountChecks(ctx context.Context, database *sql.DB) (map[string]int, error) {
	partitions, err := db.ListPartitions(ctx, database)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(partitions))
	for _, p := range partitions {
		var n int
		if err := database.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM "%s"`, p),
		).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting checks in %s: %w", p, err)
		}
		counts[p] = n
	}
	return counts, nil
}
