package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/little-shop/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const createOrderSQL = `INSERT INTO orders (id, user_id, status)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at`

const createOrderItemSQL = `INSERT INTO order_items (order_id, item_id, quantity, ordered_price, fulfilled)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at, updated_at`

// Create persists the order and all its line items in one transaction.
// Line items are inserted in slice order so their serial IDs preserve
// cart-insertion order. Any failure rolls the whole order back.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, createOrderSQL, o.ID, o.UserID, int16(o.Status)).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	for i := range o.Items {
		li := &o.Items[i]
		err = tx.QueryRow(ctx, createOrderItemSQL,
			o.ID, li.ItemID, li.Quantity, li.OrderedPrice, li.Fulfilled,
		).Scan(&li.ID, &li.CreatedAt, &li.UpdatedAt)
		if err != nil {
			return errors.Wrapf(err, "creating line item for item %q", li.ItemID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

const orderColumns = `id, user_id, status, created_at, updated_at`

// Get returns one order with its line items in creation order.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	if o.Items, err = r.lineItems(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

const lineItemsSQL = `SELECT id, order_id, item_id, quantity, ordered_price, fulfilled, created_at, updated_at
	FROM order_items
	WHERE order_id = $1
	ORDER BY id`

func (r *OrderRepository) lineItems(ctx context.Context, orderID string) ([]order.OrderItem, error) {
	rows, err := r.pool.Query(ctx, lineItemsSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "listing line items for order %q", orderID)
	}
	defer rows.Close()

	var items []order.OrderItem
	for rows.Next() {
		var li order.OrderItem
		err := rows.Scan(&li.ID, &li.OrderID, &li.ItemID, &li.Quantity,
			&li.OrderedPrice, &li.Fulfilled, &li.CreatedAt, &li.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scanning line item")
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// ByUser returns a user's orders, newest first, without line items.
func (r *OrderRepository) ByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// adminOrderedSQL buckets statuses packaged, pending, shipped, cancelled —
// the fixed priority the admin dashboard shows — newest first within each.
const adminOrderedSQL = `SELECT ` + orderColumns + ` FROM orders
	ORDER BY CASE status WHEN 1 THEN 0 WHEN 0 THEN 1 WHEN 2 THEN 2 ELSE 3 END,
		created_at DESC`

// AdminOrdered returns every order in the admin dashboard priority order.
func (r *OrderRepository) AdminOrdered(ctx context.Context) ([]order.Order, error) {
	return r.listOrders(ctx, adminOrderedSQL)
}

const findByMerchantSQL = `SELECT DISTINCT o.id, o.user_id, o.status, o.created_at, o.updated_at
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	JOIN items i ON i.id = oi.item_id
	WHERE i.merchant_id = $1
	ORDER BY o.created_at DESC, o.id`

// FindByMerchant returns distinct orders containing at least one of the
// merchant's items.
func (r *OrderRepository) FindByMerchant(ctx context.Context, merchantID string) ([]order.Order, error) {
	return r.listOrders(ctx, findByMerchantSQL, merchantID)
}

// largestOrdersSQL ranks orders by total fulfilled quantity. Ties break by
// order ID ascending.
const largestOrdersSQL = `SELECT o.id, o.user_id, o.status, o.created_at, o.updated_at
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id AND oi.fulfilled
	GROUP BY o.id
	ORDER BY SUM(oi.quantity) DESC, o.id ASC
	LIMIT 3`

// LargestOrders returns the top 3 orders by total fulfilled quantity.
func (r *OrderRepository) LargestOrders(ctx context.Context) ([]order.Order, error) {
	return r.listOrders(ctx, largestOrdersSQL)
}

// UpdateStatus applies a guarded status transition. The WHERE clause on the
// expected current status makes concurrent admin actions on the same order
// race safely: the loser updates zero rows and gets ErrInvalidTransition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, int16(from), int16(to))
	if err != nil {
		return errors.Wrapf(err, "updating order %q status", id)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return errors.Wrapf(err, "checking order %q", id)
		}
		if !exists {
			return order.ErrNotFound
		}
		return order.ErrInvalidTransition
	}
	return nil
}

// MarkFulfilled sets a line item's fulfilled flag and bumps updated_at, which
// feeds the fulfillment-time analytics.
func (r *OrderRepository) MarkFulfilled(ctx context.Context, orderItemID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE order_items SET fulfilled = TRUE, updated_at = now() WHERE id = $1`, orderItemID)
	if err != nil {
		return errors.Wrapf(err, "fulfilling line item %d", orderItemID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) listOrders(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning order")
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var status int16
	err := row.Scan(&o.ID, &o.UserID, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}
