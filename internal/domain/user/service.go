package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates registration and login checks on top of a Repository.
type Service struct {
	users Repository
}

// NewService creates a user Service.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// Register validates the input, hashes the password, and stores the account.
// Emails are stored lowercase. A duplicate email surfaces as ErrEmailTaken.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(strings.TrimSpace(reg.Email)),
		PasswordHash:  string(hash),
		Role:          reg.Role,
		Name:          reg.Name,
		StreetAddress: reg.StreetAddress,
		City:          reg.City,
		State:         reg.State,
		ZipCode:       reg.ZipCode,
		Enabled:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate looks up the account by lowercased email and compares the
// password against the stored bcrypt hash. Both a missing account and a wrong
// password return ErrBadCredentials so callers cannot probe for emails.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, errors.Wrap(err, "lookup user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Merchants lists merchant accounts. The storefront sees only enabled
// merchants; admins get everyone.
func (s *Service) Merchants(ctx context.Context, includeDisabled bool) ([]User, error) {
	if includeDisabled {
		return s.users.AllMerchants(ctx)
	}
	return s.users.ActiveMerchants(ctx)
}

// SetEnabled toggles a merchant's storefront visibility. Disabled merchants
// keep their items and order history.
func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.users.SetEnabled(ctx, id, enabled)
}
