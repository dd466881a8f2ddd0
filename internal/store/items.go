package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/labstock/internal/model"
)

const itemColumns = `id, stock_place, item_name, minimum, min_value, min_unit, category, sort_order`

func scanItem(row interface{ Scan(...any) error }, item *model.Item) error {
	return row.Scan(&item.ID, &item.StockPlace, &item.ItemName, &item.Minimum,
		&item.MinValue, &item.MinUnit, &item.Category, &item.SortOrder)
}

// CreateItem appends a new item to the end of the catalog. The display
// minimum is derived from the structured value and unit.
func CreateItem(ctx context.Context, db *sql.DB, in model.ItemInput) (*model.Item, error) {
	category := in.Category
	if category == "" {
		category = model.CategoryCommon
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (stock_place, item_name, minimum, min_value, min_unit, category, sort_order)
		 SELECT ?, ?, ?, ?, ?, ?, COALESCE(MAX(sort_order), 0) + 1 FROM items`,
		in.StockPlace, in.ItemName, model.FormatMinimum(in.MinValue, in.MinUnit),
		in.MinValue, in.MinUnit, category,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// ImportItems inserts catalog items in one transaction, keeping their sort
// order. Items whose minimum has no structured value are parsed from the
// display text.
func ImportItems(ctx context.Context, db *sql.DB, items []model.Item) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if !item.MinValue.Valid && item.MinUnit == "" {
			item.MinValue, item.MinUnit = model.ParseMinimum(item.Minimum)
		}
		if item.Minimum == "" {
			item.Minimum = model.FormatMinimum(item.MinValue, item.MinUnit)
		}
		if item.Category == "" {
			item.Category = model.CategoryCommon
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (stock_place, item_name, minimum, min_value, min_unit, category, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.StockPlace, item.ItemName, item.Minimum, item.MinValue, item.MinUnit,
			item.Category, item.SortOrder,
		)
		if err != nil {
			return 0, fmt.Errorf("importing item %q: %w", item.ItemName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(items), nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns the whole catalog in display order.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY sort_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountItems returns the catalog size.
func CountItems(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// UpdateItem replaces an item's editable fields.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, in model.ItemInput) error {
	category := in.Category
	if category == "" {
		category = model.CategoryCommon
	}
	return execOne(ctx, db, "updating item",
		`UPDATE items SET stock_place = ?, item_name = ?, minimum = ?, min_value = ?, min_unit = ?, category = ?
		 WHERE id = ?`,
		in.StockPlace, in.ItemName, model.FormatMinimum(in.MinValue, in.MinUnit),
		in.MinValue, in.MinUnit, category, id,
	)
}

// DeleteItem removes an item. Its check records in every partition and its
// order requests go with it.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	return execOne(ctx, db, "deleting item", `DELETE FROM items WHERE id = ?`, id)
}
