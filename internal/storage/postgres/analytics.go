package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/little-shop/internal/domain/analytics"
)

var _ analytics.Repository = (*AnalyticsRepository)(nil)

// AnalyticsRepository implements analytics.Repository backed by PostgreSQL.
// Every method is one grouped aggregation query; status = 2 (shipped) gates
// which orders count as sold.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository returns an AnalyticsRepository that uses the given
// pool.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

const topItemsSQL = `SELECT i.id, i.name, SUM(oi.quantity) AS units
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY i.id, i.name
	ORDER BY units DESC, i.id
	LIMIT $2`

// TopItems ranks the merchant's items by units across shipped orders.
func (r *AnalyticsRepository) TopItems(ctx context.Context, merchantID string, limit int) ([]analytics.ItemSales, error) {
	rows, err := r.pool.Query(ctx, topItemsSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top items")
	}
	defer rows.Close()

	var out []analytics.ItemSales
	for rows.Next() {
		var row analytics.ItemSales
		if err := rows.Scan(&row.ItemID, &row.Name, &row.Units); err != nil {
			return nil, errors.Wrap(err, "scanning item sales")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topStatesSQL = `SELECT c.state, COUNT(DISTINCT o.id) AS order_count
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	JOIN users c ON c.id = o.user_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY c.state
	ORDER BY order_count DESC, c.state
	LIMIT $2`

// TopStates ranks buyer states by distinct shipped orders from the merchant.
func (r *AnalyticsRepository) TopStates(ctx context.Context, merchantID string, limit int) ([]analytics.PlaceOrders, error) {
	rows, err := r.pool.Query(ctx, topStatesSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top states")
	}
	defer rows.Close()

	var out []analytics.PlaceOrders
	for rows.Next() {
		var row analytics.PlaceOrders
		if err := rows.Scan(&row.State, &row.Orders); err != nil {
			return nil, errors.Wrap(err, "scanning state ranking")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topCitiesSQL = `SELECT c.state, c.city, COUNT(DISTINCT o.id) AS order_count
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	JOIN users c ON c.id = o.user_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY c.state, c.city
	ORDER BY order_count DESC, c.state, c.city
	LIMIT $2`

// TopCities ranks buyer state+city pairs by distinct shipped orders from the
// merchant.
func (r *AnalyticsRepository) TopCities(ctx context.Context, merchantID string, limit int) ([]analytics.PlaceOrders, error) {
	rows, err := r.pool.Query(ctx, topCitiesSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top cities")
	}
	defer rows.Close()

	var out []analytics.PlaceOrders
	for rows.Next() {
		var row analytics.PlaceOrders
		if err := rows.Scan(&row.State, &row.City, &row.Orders); err != nil {
			return nil, errors.Wrap(err, "scanning city ranking")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topBuyersByOrdersSQL = `SELECT c.name, COUNT(DISTINCT o.id) AS order_count
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	JOIN users c ON c.id = o.user_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY c.id, c.name
	ORDER BY order_count DESC, c.name
	LIMIT $2`

// TopBuyersByOrders ranks buyers by distinct shipped orders from the merchant.
func (r *AnalyticsRepository) TopBuyersByOrders(ctx context.Context, merchantID string, limit int) ([]analytics.BuyerOrders, error) {
	rows, err := r.pool.Query(ctx, topBuyersByOrdersSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top buyers by orders")
	}
	defer rows.Close()

	var out []analytics.BuyerOrders
	for rows.Next() {
		var row analytics.BuyerOrders
		if err := rows.Scan(&row.Name, &row.Orders); err != nil {
			return nil, errors.Wrap(err, "scanning buyer orders")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topBuyersByItemsSQL = `SELECT c.name, SUM(oi.quantity) AS item_count
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	JOIN users c ON c.id = o.user_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY c.id, c.name
	ORDER BY item_count DESC, c.name
	LIMIT $2`

// TopBuyersByItems ranks buyers by units purchased from the merchant.
func (r *AnalyticsRepository) TopBuyersByItems(ctx context.Context, merchantID string, limit int) ([]analytics.BuyerItems, error) {
	rows, err := r.pool.Query(ctx, topBuyersByItemsSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top buyers by items")
	}
	defer rows.Close()

	var out []analytics.BuyerItems
	for rows.Next() {
		var row analytics.BuyerItems
		if err := rows.Scan(&row.Name, &row.Units); err != nil {
			return nil, errors.Wrap(err, "scanning buyer items")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topBuyersByRevenueSQL = `SELECT c.name, SUM(oi.quantity * oi.ordered_price) AS revenue
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	JOIN users c ON c.id = o.user_id
	WHERE i.merchant_id = $1 AND o.status = 2
	GROUP BY c.id, c.name
	ORDER BY revenue DESC, c.name
	LIMIT $2`

// TopBuyersByRevenue ranks buyers by revenue from the merchant's shipped
// orders. Revenue uses the ordered_price snapshot, not current prices.
func (r *AnalyticsRepository) TopBuyersByRevenue(ctx context.Context, merchantID string, limit int) ([]analytics.BuyerRevenue, error) {
	rows, err := r.pool.Query(ctx, topBuyersByRevenueSQL, merchantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top buyers by revenue")
	}
	defer rows.Close()

	var out []analytics.BuyerRevenue
	for rows.Next() {
		var row analytics.BuyerRevenue
		if err := rows.Scan(&row.Name, &row.Revenue); err != nil {
			return nil, errors.Wrap(err, "scanning buyer revenue")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const itemsSoldSQL = `SELECT COALESCE(SUM(oi.quantity), 0)
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	WHERE i.merchant_id = $1 AND o.status = 2`

// ItemsSold returns total units of the merchant's items across shipped orders.
func (r *AnalyticsRepository) ItemsSold(ctx context.Context, merchantID string) (int64, error) {
	var sold int64
	if err := r.pool.QueryRow(ctx, itemsSoldSQL, merchantID).Scan(&sold); err != nil {
		return 0, errors.Wrap(err, "items sold")
	}
	return sold, nil
}

// Inventory returns the merchant's current total stock across items.
func (r *AnalyticsRepository) Inventory(ctx context.Context, merchantID string) (int64, error) {
	var stock int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM items WHERE merchant_id = $1`,
		merchantID).Scan(&stock)
	if err != nil {
		return 0, errors.Wrap(err, "inventory")
	}
	return stock, nil
}

const pendingOrdersSQL = `SELECT DISTINCT o.id
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	JOIN items i ON i.id = oi.item_id
	WHERE i.merchant_id = $1 AND o.status = 0
	ORDER BY o.id`

// PendingOrderIDs returns pending orders containing any of the merchant's
// items.
func (r *AnalyticsRepository) PendingOrderIDs(ctx context.Context, merchantID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, pendingOrdersSQL, merchantID)
	if err != nil {
		return nil, errors.Wrap(err, "pending orders")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning order id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const averageTimeSQL = `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (oi.updated_at - oi.created_at))), 0)::float8
	FROM items i
	JOIN order_items oi ON oi.item_id = i.id
	WHERE i.merchant_id = $1`

// AverageFulfillmentTime returns the average elapsed time between a line
// item's creation and last update across all the merchant's line items.
func (r *AnalyticsRepository) AverageFulfillmentTime(ctx context.Context, merchantID string) (time.Duration, error) {
	var seconds float64
	if err := r.pool.QueryRow(ctx, averageTimeSQL, merchantID).Scan(&seconds); err != nil {
		return 0, errors.Wrap(err, "average fulfillment time")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

const topSellersSQL = `SELECT u.id, u.name, SUM(oi.quantity * oi.ordered_price) AS total_revenue
	FROM users u
	JOIN items i ON i.merchant_id = u.id
	JOIN order_items oi ON oi.item_id = i.id
	JOIN orders o ON o.id = oi.order_id
	WHERE o.status = 2
	GROUP BY u.id, u.name
	ORDER BY total_revenue DESC, u.id
	LIMIT $1`

// TopSellers ranks merchants by total revenue from shipped orders.
func (r *AnalyticsRepository) TopSellers(ctx context.Context, limit int) ([]analytics.SellerRevenue, error) {
	rows, err := r.pool.Query(ctx, topSellersSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top sellers")
	}
	defer rows.Close()

	var out []analytics.SellerRevenue
	for rows.Next() {
		var row analytics.SellerRevenue
		if err := rows.Scan(&row.MerchantID, &row.Name, &row.Revenue); err != nil {
			return nil, errors.Wrap(err, "scanning seller revenue")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const sellersByFulfillmentSQL = `SELECT u.id, u.name,
		AVG(EXTRACT(EPOCH FROM (oi.updated_at - oi.created_at))) AS fulfillment_time
	FROM users u
	JOIN items i ON i.merchant_id = u.id
	JOIN order_items oi ON oi.item_id = i.id
	WHERE oi.fulfilled
	GROUP BY u.id, u.name
	ORDER BY fulfillment_time `

// SellersByFulfillment ranks merchants by average fulfillment time over line
// items marked fulfilled. The direction is validated before being spliced
// into the ORDER BY clause; it is never caller-controlled text.
func (r *AnalyticsRepository) SellersByFulfillment(ctx context.Context, dir analytics.Direction, limit int) ([]analytics.SellerFulfillment, error) {
	if dir != analytics.Asc && dir != analytics.Desc {
		return nil, errors.Errorf("invalid direction %q", dir)
	}

	rows, err := r.pool.Query(ctx, sellersByFulfillmentSQL+string(dir)+`, u.id LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "sellers by fulfillment")
	}
	defer rows.Close()

	var out []analytics.SellerFulfillment
	for rows.Next() {
		var row analytics.SellerFulfillment
		var seconds float64
		if err := rows.Scan(&row.MerchantID, &row.Name, &seconds); err != nil {
			return nil, errors.Wrap(err, "scanning seller fulfillment")
		}
		row.AvgFulfillment = time.Duration(seconds * float64(time.Second))
		out = append(out, row)
	}
	return out, rows.Err()
}

const topCitiesGlobalSQL = `SELECT c.state, c.city, COUNT(o.id) AS count_of_orders
	FROM users c
	JOIN orders o ON o.user_id = c.id
	WHERE o.status = 2
	GROUP BY c.state, c.city
	ORDER BY count_of_orders DESC, c.state, c.city
	LIMIT $1`

// TopCitiesGlobal returns the platform-wide buyer cities with the most
// shipped orders.
func (r *AnalyticsRepository) TopCitiesGlobal(ctx context.Context, limit int) ([]analytics.PlaceOrders, error) {
	rows, err := r.pool.Query(ctx, topCitiesGlobalSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top cities global")
	}
	defer rows.Close()

	var out []analytics.PlaceOrders
	for rows.Next() {
		var row analytics.PlaceOrders
		if err := rows.Scan(&row.State, &row.City, &row.Orders); err != nil {
			return nil, errors.Wrap(err, "scanning city ranking")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

const topStatesGlobalSQL = `SELECT c.state, COUNT(o.id) AS count_of_orders
	FROM users c
	JOIN orders o ON o.user_id = c.id
	WHERE o.status = 2
	GROUP BY c.state
	ORDER BY count_of_orders DESC, c.state
	LIMIT $1`

// TopStatesGlobal returns the platform-wide buyer states with the most
// shipped orders.
func (r *AnalyticsRepository) TopStatesGlobal(ctx context.Context, limit int) ([]analytics.PlaceOrders, error) {
	rows, err := r.pool.Query(ctx, topStatesGlobalSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "top states global")
	}
	defer rows.Close()

	var out []analytics.PlaceOrders
	for rows.Next() {
		var row analytics.PlaceOrders
		if err := rows.Scan(&row.State, &row.Orders); err != nil {
			return nil, errors.Wrap(err, "scanning state ranking")
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
