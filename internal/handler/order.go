package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/little-shop/internal/domain/cart"
	"github.com/xenking/little-shop/internal/domain/order"
)

// orderRequest is the checkout payload: the purchasing user plus the cart
// contents in insertion order.
type orderRequest struct {
	UserID string             `json:"user_id"`
	Items  []orderRequestItem `json:"items"`
}

type orderRequestItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type orderItemResponse struct {
	ID           int64  `json:"id"`
	ItemID       string `json:"item_id"`
	Quantity     int    `json:"quantity"`
	OrderedPrice string `json:"ordered_price"`
	Fulfilled    bool   `json:"fulfilled"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Status       string              `json:"status"`
	Items        []orderItemResponse `json:"items,omitempty"`
	TotalCount   int                 `json:"total_count"`
	TotalCost    string              `json:"total_cost"`
	AllFulfilled bool                `json:"all_fulfilled"`
	CreatedAt    string              `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, li := range o.Items {
		items[i] = orderItemResponse{
			ID:           li.ID,
			ItemID:       li.ItemID,
			Quantity:     li.Quantity,
			OrderedPrice: li.OrderedPrice.StringFixed(2),
			Fulfilled:    li.Fulfilled,
		}
	}
	return orderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		Status:       o.Status.String(),
		Items:        items,
		TotalCount:   o.TotalCount(),
		TotalCost:    o.TotalCost().StringFixed(2),
		AllFulfilled: o.AllFulfilled(),
		CreatedAt:    o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	entries := make([]cart.Entry, len(req.Items))
	for i, it := range req.Items {
		entries[i] = cart.Entry{ItemID: it.ItemID, Quantity: it.Quantity}
	}

	o, err := h.orders.FromCart(r.Context(), req.UserID, entries)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderQueries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) packageOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Package)
}

func (h *Handler) shipOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Ship)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	id := r.PathValue("id")
	if err := fn(r.Context(), id); err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	o, err := h.orderQueries.Get(r.Context(), id)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) fulfillItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid line item id")
		return
	}
	if err := h.orders.FulfillItem(r.Context(), id); err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderQueries.ByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) largestOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderQueries.LargestOrders(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderQueries.AdminOrdered(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) merchantOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderQueries.FindByMerchant(r.Context(), r.PathValue("id"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// writeOrderError maps domain errors to HTTP responses.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var nfErr *order.ItemNotFoundError
		var iqErr *order.InvalidQuantityError
		if errors.As(err, &nfErr) || errors.As(err, &iqErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeInternalError(w, r, err)
	}
}
