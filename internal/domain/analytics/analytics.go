// Package analytics defines the aggregation queries behind the merchant and
// admin dashboards. Every ranking is a read-only aggregation over shipped
// orders and their immutable line-item snapshots; each query is a named
// method returning typed rows rather than a chained query builder.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Direction orders a ranking ascending or descending.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ItemSales ranks one catalog item by units sold across shipped orders.
type ItemSales struct {
	ItemID string
	Name   string
	Units  int64
}

// PlaceOrders counts distinct shipped orders delivered to one buyer location.
// City is empty for state-level groupings.
type PlaceOrders struct {
	State  string
	City   string
	Orders int64
}

// BuyerOrders ranks one buyer by distinct shipped orders.
type BuyerOrders struct {
	Name   string
	Orders int64
}

// BuyerItems ranks one buyer by total units purchased.
type BuyerItems struct {
	Name  string
	Units int64
}

// BuyerRevenue ranks one buyer by revenue (quantity * ordered_price).
type BuyerRevenue struct {
	Name    string
	Revenue decimal.Decimal
}

// SellerRevenue ranks one merchant by total revenue from shipped orders.
type SellerRevenue struct {
	MerchantID string
	Name       string
	Revenue    decimal.Decimal
}

// SellerFulfillment ranks one merchant by average time between a fulfilled
// line item's creation and its last update.
type SellerFulfillment struct {
	MerchantID     string
	Name           string
	AvgFulfillment time.Duration
}

// Repository defines the aggregation queries over the relational store. All
// queries fail closed: no qualifying rows yields an empty slice or zero
// value, never an error.
type Repository interface {
	// Per-merchant rankings, restricted to shipped orders.
	TopItems(ctx context.Context, merchantID string, limit int) ([]ItemSales, error)
	TopStates(ctx context.Context, merchantID string, limit int) ([]PlaceOrders, error)
	TopCities(ctx context.Context, merchantID string, limit int) ([]PlaceOrders, error)
	TopBuyersByOrders(ctx context.Context, merchantID string, limit int) ([]BuyerOrders, error)
	TopBuyersByItems(ctx context.Context, merchantID string, limit int) ([]BuyerItems, error)
	TopBuyersByRevenue(ctx context.Context, merchantID string, limit int) ([]BuyerRevenue, error)

	// Per-merchant scalar metrics.
	ItemsSold(ctx context.Context, merchantID string) (int64, error)
	Inventory(ctx context.Context, merchantID string) (int64, error)
	PendingOrderIDs(ctx context.Context, merchantID string) ([]string, error)
	AverageFulfillmentTime(ctx context.Context, merchantID string) (time.Duration, error)

	// Platform-wide rankings for the admin dashboard.
	TopSellers(ctx context.Context, limit int) ([]SellerRevenue, error)
	SellersByFulfillment(ctx context.Context, dir Direction, limit int) ([]SellerFulfillment, error)
	TopCitiesGlobal(ctx context.Context, limit int) ([]PlaceOrders, error)
	TopStatesGlobal(ctx context.Context, limit int) ([]PlaceOrders, error)
}
