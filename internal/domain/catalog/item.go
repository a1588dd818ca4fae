// Package catalog holds the merchant-owned item model and its persistence
// contract.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Item is a catalog entry owned by one merchant. Quantity is the stock on
// hand; Price is the current unit price and may change over time — orders
// snapshot it at checkout.
type Item struct {
	ID          string
	MerchantID  string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for the item catalog.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
	ByMerchant(ctx context.Context, merchantID string) ([]Item, error)
	List(ctx context.Context) ([]Item, error)
}
