package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/labstock/internal/db"
	"github.com/erazemk/labstock/internal/model"
)

// NewOrder holds the fields of an order request to create.
type NewOrder struct {
	ItemID           int64
	RequestedBy      string
	RequestedByGroup string
	QuantityNeeded   string
	Note             string
}

const orderColumns = `o.id, o.item_id, i.item_name, i.stock_place, i.minimum, o.requested_by,
       o.requested_by_group, o.quantity_needed, o.status, o.note, o.created_at,
       o.ordered_by, o.ordered_at, o.resolved_by, o.resolved_at`

func scanOrder(row interface{ Scan(...any) error }, o *model.OrderRequest) error {
	return row.Scan(&o.ID, &o.ItemID, &o.ItemName, &o.StockPlace, &o.Minimum, &o.RequestedBy,
		&o.RequestedByGroup, &o.QuantityNeeded, &o.Status, &o.Note, &o.CreatedAt,
		&o.OrderedBy, &o.OrderedAt, &o.ResolvedBy, &o.ResolvedAt)
}

// CreateOrder opens a pending order request. It fails with model.ErrConflict
// while another request for the same item is pending or ordered.
func CreateOrder(ctx context.Context, database *sql.DB, no NewOrder, createdAt string) (*model.OrderRequest, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE id = ?)`, no.ItemID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("item %d: %w", no.ItemID, model.ErrNotFound)
	}

	var open bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_requests WHERE item_id = ? AND status IN ('pending', 'ordered'))`,
		no.ItemID,
	).Scan(&open); err != nil {
		return nil, fmt.Errorf("checking open orders: %w", err)
	}
	if open {
		return nil, fmt.Errorf("%w: an order request already exists for this item", model.ErrConflict)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO order_requests (item_id, requested_by, requested_by_group, quantity_needed, note, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		no.ItemID, no.RequestedBy, no.RequestedByGroup, no.QuantityNeeded, no.Note,
		string(model.OrderPending), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating order request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting order id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return GetOrder(ctx, database, id)
}

// GetOrder returns an order request by ID, or nil if there is none.
func GetOrder(ctx context.Context, database *sql.DB, id int64) (*model.OrderRequest, error) {
	return getOrder(ctx, database, id)
}

func getOrder(ctx context.Context, q db.Querier, id int64) (*model.OrderRequest, error) {
	o := &model.OrderRequest{}
	err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM order_requests o JOIN items i ON o.item_id = i.id WHERE o.id = ?`, id,
	), o)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting order request: %w", err)
	}
	return o, nil
}

// ListOrders returns order requests newest first, optionally only those in
// one status.
func ListOrders(ctx context.Context, database *sql.DB, st model.OrderStatus) ([]model.OrderRequest, error) {
	query := `SELECT ` + orderColumns + ` FROM order_requests o JOIN items i ON o.item_id = i.id`
	var args []any
	if st != "" {
		query += ` WHERE o.status = ?`
		args = append(args, string(st))
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing order requests: %w", err)
	}
	defer rows.Close()

	var orders []model.OrderRequest
	for rows.Next() {
		var o model.OrderRequest
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scanning order request: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// LatestOrderPerItem returns the newest order request of every item that
// has one, in any status.
func LatestOrderPerItem(ctx context.Context, database *sql.DB) (map[int64]model.OrderRequest, error) {
	orders, err := ListOrders(ctx, database, "")
	if err != nil {
		return nil, err
	}
	latest := make(map[int64]model.OrderRequest)
	for _, o := range orders {
		if _, ok := latest[o.ItemID]; !ok {
			latest[o.ItemID] = o
		}
	}
	return latest, nil
}

// TransitionOrder moves an order request to status to on behalf of actor.
// Moving to ordered records who ordered it and when; moving to a terminal
// status records who resolved it and when.
func TransitionOrder(ctx context.Context, database *sql.DB, id int64, to model.OrderStatus, actor model.Actor, at string) (*model.OrderRequest, error) {
	if !to.Valid() {
		return nil, model.Invalid(fmt.Sprintf("invalid status %q", to))
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := getOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order request %d: %w", id, model.ErrNotFound)
	}

	if err := model.AuthorizeTransition(order, to, actor); err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order request %d is already %s", model.ErrConflict, id, order.Status)
	}
	if !model.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: cannot move an order from %s to %s", model.ErrConflict, order.Status, to)
	}

	if to == model.OrderOrdered {
		_, err = tx.ExecContext(ctx,
			`UPDATE order_requests SET status = ?, ordered_by = ?, ordered_at = ? WHERE id = ?`,
			string(to), actor.Name, at, id,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE order_requests SET status = ?, resolved_by = ?, resolved_at = ? WHERE id = ?`,
			string(to), actor.Name, at, id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating order request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return GetOrder(ctx, database, id)
}

// DeleteAllOrders removes every order request and returns how many there were.
func DeleteAllOrders(ctx context.Context, database *sql.DB) (int64, error) {
	res, err := database.ExecContext(ctx, `DELETE FROM order_requests`)
	if err != nil {
		return 0, fmt.Errorf("deleting order requests: %w", err)
	}
	return res.RowsAffected()
}
