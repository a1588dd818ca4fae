package handler

import (
	"net/http"

	"github.com/xenking/little-shop/internal/domain/analytics"
)

type itemSalesResponse struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Units  int64  `json:"units"`
}

type placeOrdersResponse struct {
	State  string `json:"state"`
	City   string `json:"city,omitempty"`
	Orders int64  `json:"orders"`
}

type buyerResponse struct {
	Name    string `json:"name"`
	Orders  int64  `json:"orders,omitempty"`
	Units   int64  `json:"units,omitempty"`
	Revenue string `json:"revenue,omitempty"`
}

type sellerResponse struct {
	MerchantID     string  `json:"merchant_id"`
	Name           string  `json:"name"`
	Revenue        string  `json:"revenue,omitempty"`
	AvgFulfillment float64 `json:"avg_fulfillment_seconds,omitempty"`
}

// merchantStatsResponse is the merchant dashboard payload.
type merchantStatsResponse struct {
	TopItems      []itemSalesResponse   `json:"top_items"`
	TopStates     []placeOrdersResponse `json:"top_states"`
	TopCities     []placeOrdersResponse `json:"top_cities"`
	TopUserOrders *buyerResponse        `json:"top_user_orders,omitempty"`
	TopUserItems  *buyerResponse        `json:"top_user_items,omitempty"`
	TopUsersMoney []buyerResponse       `json:"top_users_money"`
	ItemsSold     int64                 `json:"items_sold"`
	PctSold       float64               `json:"pct_sold"`
	PendingOrders []string              `json:"pending_orders"`
	AverageTime   float64               `json:"average_time_seconds"`
}

func (h *Handler) merchantStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID := r.PathValue("id")
	var resp merchantStatsResponse

	topItems, err := h.stats.TopItems(ctx, merchantID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	for _, row := range topItems {
		resp.TopItems = append(resp.TopItems, itemSalesResponse(row))
	}

	topStates, err := h.stats.TopStates(ctx, merchantID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.TopStates = toPlaceOrders(topStates)

	topCities, err := h.stats.TopCities(ctx, merchantID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.TopCities = toPlaceOrders(topCities)

	if top, err := h.stats.TopUserOrders(ctx, merchantID); err != nil {
		writeInternalError(w, r, err)
		return
	} else if top != nil {
		resp.TopUserOrders = &buyerResponse{Name: top.Name, Orders: top.Orders}
	}

	if top, err := h.stats.TopUserItems(ctx, merchantID); err != nil {
		writeInternalError(w, r, err)
		return
	} else if top != nil {
		resp.TopUserItems = &buyerResponse{Name: top.Name, Units: top.Units}
	}

	topMoney, err := h.stats.TopUsersMoney(ctx, merchantID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	for _, row := range topMoney {
		resp.TopUsersMoney = append(resp.TopUsersMoney, buyerResponse{
			Name:    row.Name,
			Revenue: row.Revenue.StringFixed(2),
		})
	}

	if resp.ItemsSold, err = h.stats.ItemsSold(ctx, merchantID); err != nil {
		writeInternalError(w, r, err)
		return
	}
	if resp.PctSold, err = h.stats.PctSold(ctx, merchantID); err != nil {
		writeInternalError(w, r, err)
		return
	}
	if resp.PendingOrders, err = h.stats.PendingOrders(ctx, merchantID); err != nil {
		writeInternalError(w, r, err)
		return
	}

	avg, err := h.stats.AverageTime(ctx, merchantID)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.AverageTime = avg.Seconds()

	writeJSON(w, http.StatusOK, resp)
}

// adminStatsResponse is the admin dashboard payload.
type adminStatsResponse struct {
	TopSellers        []sellerResponse      `json:"top_sellers"`
	FastestFulfilling []sellerResponse      `json:"fastest_fulfilling"`
	SlowestFulfilling []sellerResponse      `json:"slowest_fulfilling"`
	TopCities         []placeOrdersResponse `json:"top_cities"`
	TopStates         []placeOrdersResponse `json:"top_states"`
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var resp adminStatsResponse

	sellers, err := h.stats.TopThreeSellers(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	for _, row := range sellers {
		resp.TopSellers = append(resp.TopSellers, sellerResponse{
			MerchantID: row.MerchantID,
			Name:       row.Name,
			Revenue:    row.Revenue.StringFixed(2),
		})
	}

	fastest, err := h.stats.SortByFulfillment(ctx, analytics.Asc)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.FastestFulfilling = toFulfillmentRows(fastest)

	slowest, err := h.stats.SortByFulfillment(ctx, analytics.Desc)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.SlowestFulfilling = toFulfillmentRows(slowest)

	cities, err := h.stats.TopThreeCities(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.TopCities = toPlaceOrders(cities)

	states, err := h.stats.TopThreeStates(ctx)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	resp.TopStates = toPlaceOrders(states)

	writeJSON(w, http.StatusOK, resp)
}

func toPlaceOrders(rows []analytics.PlaceOrders) []placeOrdersResponse {
	out := make([]placeOrdersResponse, len(rows))
	for i, row := range rows {
		out[i] = placeOrdersResponse(row)
	}
	return out
}

func toFulfillmentRows(rows []analytics.SellerFulfillment) []sellerResponse {
	out := make([]sellerResponse, len(rows))
	for i, row := range rows {
		out[i] = sellerResponse{
			MerchantID:     row.MerchantID,
			Name:           row.Name,
			AvgFulfillment: row.AvgFulfillment.Seconds(),
		}
	}
	return out
}
