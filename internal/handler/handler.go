// Package handler exposes the order and analytics core as a small JSON API
// consumed by the storefront dashboards. HTML rendering, sessions, and
// access control live in the separate web frontend.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/little-shop/internal/domain/analytics"
	"github.com/xenking/little-shop/internal/domain/catalog"
	"github.com/xenking/little-shop/internal/domain/order"
	"github.com/xenking/little-shop/internal/domain/user"
)

// Handler serves the JSON endpoints, delegating business logic to the domain
// services.
type Handler struct {
	users        *user.Service
	items        catalog.Repository
	orders       *order.Service
	orderQueries order.Repository
	stats        *analytics.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(users *user.Service, items catalog.Repository, orders *order.Service, orderQueries order.Repository, stats *analytics.Service) *Handler {
	return &Handler{
		users:        users,
		items:        items,
		orders:       orders,
		orderQueries: orderQueries,
		stats:        stats,
	}
}

// Register attaches all routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.register)
	mux.HandleFunc("POST /api/sessions", h.login)
	mux.HandleFunc("GET /api/items", h.listItems)
	mux.HandleFunc("GET /api/merchants", h.listMerchants)
	mux.HandleFunc("GET /api/merchants/{id}/items", h.merchantItems)
	mux.HandleFunc("POST /api/orders", h.placeOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /api/orders/{id}/package", h.packageOrder)
	mux.HandleFunc("POST /api/orders/{id}/ship", h.shipOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("POST /api/order-items/{id}/fulfill", h.fulfillItem)
	mux.HandleFunc("GET /api/users/{id}/orders", h.userOrders)
	mux.HandleFunc("GET /api/admin/orders", h.adminOrders)
	mux.HandleFunc("GET /api/admin/orders/largest", h.largestOrders)
	mux.HandleFunc("GET /api/admin/merchants", h.adminMerchants)
	mux.HandleFunc("POST /api/admin/merchants/{id}/enable", h.enableMerchant)
	mux.HandleFunc("POST /api/admin/merchants/{id}/disable", h.disableMerchant)
	mux.HandleFunc("GET /api/admin/stats", h.adminStats)
	mux.HandleFunc("GET /api/merchants/{id}/stats", h.merchantStats)
	mux.HandleFunc("GET /api/merchants/{id}/orders", h.merchantOrders)
}

// errorResponse is the JSON error body shared by all endpoints.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeInternalError logs the error and responds 500 without leaking details.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("handler error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
