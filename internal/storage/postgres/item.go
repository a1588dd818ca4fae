package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/little-shop/internal/domain/catalog"
)

var _ catalog.Repository = (*ItemRepository)(nil)

// ItemRepository implements catalog.Repository backed by PostgreSQL.
type ItemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns an ItemRepository that uses the given pool.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

const itemColumns = `id, merchant_id, name, description, price, quantity, created_at, updated_at`

const createItemSQL = `INSERT INTO items (id, merchant_id, name, description, price, quantity)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at`

// Create persists a new catalog item.
func (r *ItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	err := r.pool.QueryRow(ctx, createItemSQL,
		item.ID, item.MerchantID, item.Name, item.Description, item.Price, item.Quantity,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "creating item %q", item.ID)
	}
	return nil
}

// GetByID returns a single item by its identifier.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*catalog.Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)

	var it catalog.Item
	if err := scanItem(row, &it); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting item %q", id)
	}
	return &it, nil
}

// GetByIDs returns items matching any of the given IDs. Missing IDs are
// simply absent from the result; the caller decides whether that is an error.
func (r *ItemRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Item, error) {
	return r.listItems(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1)`, ids)
}

// ByMerchant returns all items owned by one merchant.
func (r *ItemRepository) ByMerchant(ctx context.Context, merchantID string) ([]catalog.Item, error) {
	return r.listItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE merchant_id = $1 ORDER BY id`, merchantID)
}

// List returns the whole catalog ordered by ID.
func (r *ItemRepository) List(ctx context.Context) ([]catalog.Item, error) {
	return r.listItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

func (r *ItemRepository) listItems(ctx context.Context, sql string, args ...any) ([]catalog.Item, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing items")
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, errors.Wrap(err, "scanning item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row, it *catalog.Item) error {
	return row.Scan(&it.ID, &it.MerchantID, &it.Name, &it.Description,
		&it.Price, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
}
