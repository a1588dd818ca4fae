package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/little-shop/internal/domain/cart"
	"github.com/xenking/little-shop/internal/domain/catalog"
)

// Service encapsulates checkout and lifecycle business logic.
type Service struct {
	items  catalog.Repository
	orders Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(items catalog.Repository, orders Repository) *Service {
	return &Service{
		items:  items,
		orders: orders,
	}
}

// FromCart materializes a cart into a pending order for userID. One line item
// is created per cart entry, in cart-insertion order, snapshotting the item's
// current price as OrderedPrice. The order and all its line items are
// persisted in a single transaction; any failure leaves no partial order.
func (s *Service) FromCart(ctx context.Context, userID string, entries []cart.Entry) (*Order, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		if e.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: e.ItemID}
		}
		ids[i] = e.ItemID
	}

	// Batch fetch all referenced items in a single query.
	fetched, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get items")
	}

	itemMap := make(map[string]catalog.Item, len(fetched))
	for _, it := range fetched {
		itemMap[it.ID] = it
	}

	o := &Order{
		ID:     uuid.New().String(),
		UserID: userID,
		Status: StatusPending,
		Items:  make([]OrderItem, 0, len(entries)),
	}
	for _, e := range entries {
		it, ok := itemMap[e.ItemID]
		if !ok {
			return nil, &ItemNotFoundError{ItemID: e.ItemID}
		}
		o.Items = append(o.Items, OrderItem{
			OrderID:      o.ID,
			ItemID:       it.ID,
			Quantity:     e.Quantity,
			OrderedPrice: it.Price,
		})
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Package moves a pending order to packaged.
func (s *Service) Package(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusPackaged)
}

// Ship moves a packaged order to shipped. Shipped is terminal.
func (s *Service) Ship(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusShipped)
}

// Cancel moves a pending or packaged order to cancelled. Cancelled is
// terminal; shipped orders cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, StatusCancelled)
}

// transition loads the current status, checks the lifecycle rules, and
// applies the update guarded on the status it just read. A concurrent admin
// action on the same order loses the race and gets ErrInvalidTransition.
func (s *Service) transition(ctx context.Context, orderID string, to Status) error {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, to)
	}
	return s.orders.UpdateStatus(ctx, orderID, o.Status, to)
}

// FulfillItem marks one line item as fulfilled by its merchant.
func (s *Service) FulfillItem(ctx context.Context, orderItemID int64) error {
	return s.orders.MarkFulfilled(ctx, orderItemID)
}
