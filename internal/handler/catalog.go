package handler

import (
	"net/http"

	"github.com/xenking/little-shop/internal/domain/catalog"
)

type itemResponse struct {
	ID          string `json:"id"`
	MerchantID  string `json:"merchant_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
}

func toItemResponses(items []catalog.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:          it.ID,
			MerchantID:  it.MerchantID,
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return out
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

func (h *Handler) merchantItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ByMerchant(r.Context(), r.PathValue("id"))
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}
