package api

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/store"
)

// OrdersHandler handles order request endpoints.
type OrdersHandler struct {
	*Deps
}

type createOrderRequest struct {
	ItemID         int64  `json:"item_id" validate:"required,min=1"`
	QuantityNeeded string `json:"quantity_needed" validate:"max=100"`
	Note           string `json:"note" validate:"max=500"`
}

type transitionRequest struct {
	Status model.OrderStatus `json:"status"`
}

// List handles GET /api/orders?status=.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	st := model.OrderStatus(r.URL.Query().Get("status"))
	if st != "" && !st.Valid() {
		writeError(w, h.Logger, "list orders", model.Invalid(fmt.Sprintf("invalid status %q", st)))
		return
	}

	orders, err := store.ListOrders(r.Context(), h.DB, st)
	if err != nil {
		writeError(w, h.Logger, "list orders", err)
		return
	}
	if orders == nil {
		orders = []model.OrderRequest{}
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, h.Logger, "create order", err)
		return
	}

	actor := claims.Actor()
	order, err := store.CreateOrder(r.Context(), h.DB, store.NewOrder{
		ItemID:           req.ItemID,
		RequestedBy:      actor.Name,
		RequestedByGroup: actor.Group,
		QuantityNeeded:   strings.TrimSpace(req.QuantityNeeded),
		Note:             strings.TrimSpace(req.Note),
	}, h.Clock.Timestamp())
	if err != nil {
		writeError(w, h.Logger, "create order", err)
		return
	}

	h.Logger.Info("order requested",
		zap.String("user", claims.Username),
		zap.String("item", order.ItemName),
		zap.Int64("order_id", order.ID),
	)
	jsonResponse(w, http.StatusCreated, order)
}

// Transition handles POST /api/orders/{id}/status.
func (h *OrdersHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.TransitionOrder(r.Context(), h.DB, id, req.Status, claims.Actor(), h.Clock.Timestamp())
	if err != nil {
		writeError(w, h.Logger, "update order", err)
		return
	}
	h.Metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()

	h.Logger.Info("order updated",
		zap.String("user", claims.Username),
		zap.Int64("order_id", id),
		zap.String("status", string(order.Status)),
	)
	jsonResponse(w, http.StatusOK, order)
}

// DeleteAll handles DELETE /api/orders.
func (h *OrdersHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := store.DeleteAllOrders(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "delete orders", err)
		return
	}

	h.Logger.Warn("all order requests deleted", zap.String("user", GetClaims(r.Context()).Username), zap.Int64("deleted", n))
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": n})
}
