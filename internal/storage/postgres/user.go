package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/little-shop/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_digest, role, name, street_address, city, state, zip_code, enabled, created_at, updated_at`

const createUserSQL = `INSERT INTO users (id, email, password_digest, role, name, street_address, city, state, zip_code, enabled)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at`

// Create persists a new account. A duplicate email surfaces as
// user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL,
		u.ID, u.Email, u.PasswordHash, int16(u.Role),
		u.Name, u.StreetAddress, u.City, u.State, u.ZipCode, u.Enabled,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailTaken
		}
		return errors.Wrapf(err, "creating user %q", u.Email)
	}
	return nil
}

// GetByID returns one account by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns one account by its (lowercase) email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// SetEnabled toggles a merchant's enabled flag.
func (r *UserRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
	if err != nil {
		return errors.Wrapf(err, "updating user %q", id)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ActiveMerchants returns enabled merchant accounts.
func (r *UserRepository) ActiveMerchants(ctx context.Context) ([]user.User, error) {
	return r.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND enabled ORDER BY name`,
		int16(user.RoleMerchant))
}

// AllMerchants returns every merchant account, enabled or not.
func (r *UserRepository) AllMerchants(ctx context.Context) ([]user.User, error) {
	return r.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name`,
		int16(user.RoleMerchant))
}

func (r *UserRepository) listUsers(ctx context.Context, sql string, args ...any) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing users")
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role int16
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role,
		&u.Name, &u.StreetAddress, &u.City, &u.State, &u.ZipCode,
		&u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "scanning user")
	}
	u.Role = user.Role(role)
	return &u, nil
}
