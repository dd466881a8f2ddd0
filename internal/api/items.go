package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/status"
	"github.com/erazemk/labstock/internal/store"
)

// ItemsHandler handles item catalog endpoints.
type ItemsHandler struct {
	*Deps
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		writeError(w, h.Logger, "list items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "get item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

func (h *ItemsHandler) decodeInput(r *http.Request) (model.ItemInput, error) {
	var in model.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		return in, model.Invalid("invalid request body")
	}
	in.StockPlace = strings.TrimSpace(in.StockPlace)
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.MinUnit = strings.TrimSpace(in.MinUnit)
	in.Category = strings.TrimSpace(in.Category)

	if err := validateRequest(in); err != nil {
		return in, err
	}
	if in.MinValue.Valid && in.MinValue.Decimal.IsNegative() {
		return in, model.Invalid("min_value must not be negative")
	}
	if in.MinValue.Valid && !status.InRange(in.MinValue.Decimal) {
		return in, model.Invalid("min_value is out of range")
	}
	return in, nil
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeInput(r)
	if err != nil {
		writeError(w, h.Logger, "create item", err)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if err != nil {
		writeError(w, h.Logger, "create item", err)
		return
	}

	h.Logger.Info("item created", zap.String("user", GetClaims(r.Context()).Username), zap.String("item", item.ItemName))
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	in, err := h.decodeInput(r)
	if err != nil {
		writeError(w, h.Logger, "update item", err)
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, in); err != nil {
		writeError(w, h.Logger, "update item", err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, h.Logger, "get item", err)
		return
	}
	h.Logger.Info("item updated", zap.String("user", GetClaims(r.Context()).Username), zap.Int64("item_id", id))
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. The item's check records and order
// requests are removed with it.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		writeError(w, h.Logger, "delete item", err)
		return
	}

	h.Logger.Info("item deleted", zap.String("user", GetClaims(r.Context()).Username), zap.Int64("item_id", id))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
