package model

import "fmt"

// OrderStatus is the state of an order request.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderOrdered   OrderStatus = "ordered"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefused   OrderStatus = "refused"
)

// transitions lists the legal target states for each non-terminal state.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderOrdered, OrderReceived, OrderCancelled, OrderRefused},
	OrderOrdered: {OrderReceived, OrderCancelled},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderOrdered, OrderReceived, OrderCancelled, OrderRefused:
		return true
	}
	return false
}

// Open reports whether s still blocks a new request for the same item.
func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderOrdered
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderRequest asks an admin to reorder an item.
type OrderRequest struct {
	ID               int64       `json:"id"`
	ItemID           int64       `json:"item_id"`
	ItemName         string      `json:"item_name,omitempty"`
	StockPlace       string      `json:"stock_place,omitempty"`
	Minimum          string      `json:"minimum,omitempty"`
	RequestedBy      string      `json:"requested_by"`
	RequestedByGroup string      `json:"requested_by_group"`
	QuantityNeeded   string      `json:"quantity_needed"`
	Status           OrderStatus `json:"status"`
	Note             string      `json:"note"`
	CreatedAt        string      `json:"created_at"`
	OrderedBy        string      `json:"ordered_by,omitempty"`
	OrderedAt        string      `json:"ordered_at,omitempty"`
	ResolvedBy       string      `json:"resolved_by,omitempty"`
	ResolvedAt       string      `json:"resolved_at,omitempty"`
}

// Actor is the user performing an order transition.
type Actor struct {
	Name    string
	Group   string
	IsAdmin bool
}

// AuthorizeTransition checks that actor may move order to status to. It
// does not check graph legality.
func AuthorizeTransition(order *OrderRequest, to OrderStatus, actor Actor) error {
	switch to {
	case OrderOrdered, OrderReceived, OrderRefused:
		if !actor.IsAdmin {
			return fmt.Errorf("%w: only admin can mark an order %s", ErrForbidden, to)
		}
	case OrderCancelled:
		if !actor.IsAdmin && actor.Group != order.RequestedByGroup {
			return fmt.Errorf("%w: you can only cancel your own group's order requests", ErrForbidden)
		}
	default:
		return fmt.Errorf("%w: cannot move an order to %s", ErrConflict, to)
	}
	return nil
}
