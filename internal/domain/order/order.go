// Package order implements order materialization from a cart, the order
// status lifecycle, and the order-level queries used by customer, merchant,
// and admin views.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state. The numeric values are stored in the
// database and must not be reordered: analytics queries count an order as
// sold once it reaches StatusShipped.
type Status int16

const (
	StatusPending   Status = 0
	StatusPackaged  Status = 1
	StatusShipped   Status = 2
	StatusCancelled Status = 3
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPackaged:
		return "packaged"
	case StatusShipped:
		return "shipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// The forward path is pending → packaged → shipped; pending and packaged may
// also move to cancelled. Shipped and cancelled are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusPackaged:
		return s == StatusPending
	case StatusShipped:
		return s == StatusPackaged
	case StatusCancelled:
		return true
	default:
		return false
	}
}

// Sentinel errors for order operations.
var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ItemNotFoundError indicates the cart references an item that does not
// exist. Materialization aborts without creating anything.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return "item " + e.ItemID + " not found"
}

// InvalidQuantityError indicates a cart entry has a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return "quantity must be greater than 0 for item " + e.ItemID
}

// OrderItem is one line of an order: a quantity plus the unit price captured
// at checkout. OrderedPrice never changes after creation, so revenue
// analytics stay correct when the catalog price moves later. The Fulfilled
// flag is set by the merchant once the line has been prepared.
type OrderItem struct {
	ID           int64
	OrderID      string
	ItemID       string
	Quantity     int
	OrderedPrice decimal.Decimal
	Fulfilled    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Order is a persisted purchase. Items are kept in cart-insertion order.
// Orders are never deleted; cancellation is a status, not a removal.
type Order struct {
	ID        string
	UserID    string
	Status    Status
	Items     []OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalCount returns the summed quantity across all line items.
func (o *Order) TotalCount() int {
	total := 0
	for _, li := range o.Items {
		total += li.Quantity
	}
	return total
}

// TotalCost returns the summed quantity*ordered_price across all line items.
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.OrderedPrice.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total
}

// AllFulfilled reports whether every line item has been fulfilled. An order
// with no line items is vacuously fulfilled.
func (o *Order) AllFulfilled() bool {
	for _, li := range o.Items {
		if !li.Fulfilled {
			return false
		}
	}
	return true
}

// Repository defines persistence operations for orders. Create persists the
// order and all its line items atomically.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	ByUser(ctx context.Context, userID string) ([]Order, error)

	// AdminOrdered returns every order bucketed packaged, pending, shipped,
	// cancelled, newest-created first within each bucket.
	AdminOrdered(ctx context.Context) ([]Order, error)

	// FindByMerchant returns distinct orders containing at least one line
	// item whose catalog item belongs to the merchant.
	FindByMerchant(ctx context.Context, merchantID string) ([]Order, error)

	// LargestOrders returns the top 3 orders by total fulfilled line-item
	// quantity, descending, ties broken by order ID ascending.
	LargestOrders(ctx context.Context) ([]Order, error)

	// UpdateStatus moves an order from one status to another. The update is
	// guarded on the expected current status; a concurrent change surfaces
	// as ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	MarkFulfilled(ctx context.Context, orderItemID int64) error
}
