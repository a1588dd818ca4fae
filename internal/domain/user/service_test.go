package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	byEmail   map[string]*User
	created   *User
	createErr error
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, _ string) (*User, error) {
	return nil, ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) SetEnabled(_ context.Context, _ string, _ bool) error { return nil }

func (m *mockUserRepo) ActiveMerchants(_ context.Context) ([]User, error) {
	return []User{{Name: "Active Merchant", Role: RoleMerchant, Enabled: true}}, nil
}

func (m *mockUserRepo) AllMerchants(_ context.Context) ([]User, error) {
	return []User{
		{Name: "Active Merchant", Role: RoleMerchant, Enabled: true},
		{Name: "Disabled Merchant", Role: RoleMerchant},
	}, nil
}

func validRegistration() Registration {
	return Registration{
		Email:         "Ian@Example.com",
		Password:      "secret",
		Name:          "Ian M",
		StreetAddress: "123 Main St",
		City:          "Denver",
		State:         "CO",
		ZipCode:       "80202",
		Role:          RoleCustomer,
	}
}

func TestRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "ian@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.Enabled)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))
	require.NotNil(t, repo.created)
	assert.Equal(t, u.ID, repo.created.ID)
}

func TestRegister_MissingFields(t *testing.T) {
	reg := validRegistration()
	reg.StreetAddress = ""
	reg.City = " "

	_, err := NewService(&mockUserRepo{}).Register(context.Background(), reg)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"Street Address", "City"}, vErr.Fields)
}

func TestRegister_ShortPassword(t *testing.T) {
	reg := validRegistration()
	reg.Password = "abcd"

	_, err := NewService(&mockUserRepo{}).Register(context.Background(), reg)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "Password")
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := &mockUserRepo{createErr: ErrEmailTaken}

	_, err := NewService(repo).Register(context.Background(), validRegistration())
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{byEmail: map[string]*User{
		"ian@example.com": {ID: "u1", Email: "ian@example.com", PasswordHash: string(hash)},
	}}
	svc := NewService(repo)

	u, err := svc.Authenticate(context.Background(), "Ian@Example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Authenticate(context.Background(), "ian@example.com", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "customer", RoleCustomer.String())
	assert.Equal(t, "merchant", RoleMerchant.String())
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.False(t, Role(7).Valid())
}

func TestMerchants(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	active, err := svc.Merchants(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].Enabled)

	all, err := svc.Merchants(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
