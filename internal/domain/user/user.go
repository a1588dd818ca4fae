// Package user holds the account model shared by customers, merchants, and
// admins, together with registration and credential checks.
package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Role distinguishes the three account kinds. The numeric values are stored
// in the database and must not be reordered.
type Role int16

const (
	RoleCustomer Role = 0
	RoleMerchant Role = 1
	RoleAdmin    Role = 2
)

// String returns the lowercase role name.
func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleMerchant:
		return "merchant"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleAdmin:
		return true
	default:
		return false
	}
}

// Sentinel errors for account operations.
var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailTaken     = errors.New("e-mail already in use")
	ErrBadCredentials = errors.New("incorrect email address or password")
)

// ValidationError reports which required registration fields are missing or
// invalid. Field names match the registration form labels.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in all fields: " + strings.Join(e.Fields, ", ")
}

// User is an account. Merchants own items; customers own orders. The Enabled
// flag is only meaningful for merchants (disabled merchants are hidden from
// the storefront but keep their history).
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	Name          string
	StreetAddress string
	City          string
	State         string
	ZipCode       string
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MinPasswordLen is the minimum accepted password length at registration.
const MinPasswordLen = 5

// Registration is the input for creating a new account. Password is the
// plaintext credential; it is hashed before the account is stored.
type Registration struct {
	Email         string
	Password      string
	Name          string
	StreetAddress string
	City          string
	State         string
	ZipCode       string
	Role          Role
}

// Validate checks that every required field is present and the password meets
// the minimum length. It returns a *ValidationError naming each bad field.
func (r Registration) Validate() error {
	var missing []string
	for _, f := range []struct {
		label string
		value string
	}{
		{"Name", r.Name},
		{"Street Address", r.StreetAddress},
		{"City", r.City},
		{"State", r.State},
		{"Zip Code", r.ZipCode},
		{"E-Mail", r.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(r.Password) < MinPasswordLen {
		missing = append(missing, "Password")
	}
	if !r.Role.Valid() {
		missing = append(missing, "Role")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	ActiveMerchants(ctx context.Context) ([]User, error)
	AllMerchants(ctx context.Context) ([]User, error)
}
