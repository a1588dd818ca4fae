// Command seed-db populates a database with demo users, items, and orders in
// every lifecycle state so the dashboards have something to show.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/little-shop/internal/domain/cart"
	"github.com/xenking/little-shop/internal/domain/catalog"
	"github.com/xenking/little-shop/internal/domain/order"
	"github.com/xenking/little-shop/internal/domain/user"
	"github.com/xenking/little-shop/internal/storage/postgres"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	users := user.NewService(userRepo)
	orders := order.NewService(itemRepo, orderRepo)

	merchants, customers, err := seedUsers(ctx, users)
	if err != nil {
		return errors.Wrap(err, "seed users")
	}

	items, err := seedItems(ctx, itemRepo, merchants)
	if err != nil {
		return errors.Wrap(err, "seed items")
	}

	if err := seedOrders(ctx, orders, customers, items); err != nil {
		return errors.Wrap(err, "seed orders")
	}

	return nil
}

func seedUsers(ctx context.Context, users *user.Service) (merchants, customers []*user.User, err error) {
	registrations := []user.Registration{
		{Name: "Annie Admin", Email: "admin@example.com", Role: user.RoleAdmin,
			StreetAddress: "1 Admin Way", City: "Denver", State: "CO", ZipCode: "80202"},
		{Name: "Megs Market", Email: "megs@example.com", Role: user.RoleMerchant,
			StreetAddress: "10 Market St", City: "Denver", State: "CO", ZipCode: "80202"},
		{Name: "Bries Boutique", Email: "brie@example.com", Role: user.RoleMerchant,
			StreetAddress: "22 Boutique Blvd", City: "Austin", State: "TX", ZipCode: "78701"},
		{Name: "Carl Customer", Email: "carl@example.com", Role: user.RoleCustomer,
			StreetAddress: "5 Elm St", City: "Denver", State: "CO", ZipCode: "80203"},
		{Name: "Dana Shopper", Email: "dana@example.com", Role: user.RoleCustomer,
			StreetAddress: "9 Oak Ave", City: "Portland", State: "OR", ZipCode: "97201"},
		{Name: "Evan Buyer", Email: "evan@example.com", Role: user.RoleCustomer,
			StreetAddress: "14 Pine Rd", City: "Austin", State: "TX", ZipCode: "78702"},
	}

	for _, reg := range registrations {
		reg.Password = "password"
		u, err := users.Register(ctx, reg)
		if err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				slog.Info("user already seeded", slog.String("email", reg.Email))
				continue
			}
			return nil, nil, errors.Wrapf(err, "register %s", reg.Email)
		}

		slog.Info("registered user",
			slog.String("email", u.Email),
			slog.String("role", u.Role.String()),
		)

		switch u.Role {
		case user.RoleMerchant:
			merchants = append(merchants, u)
		case user.RoleCustomer:
			customers = append(customers, u)
		}
	}
	return merchants, customers, nil
}

func seedItems(ctx context.Context, repo catalog.Repository, merchants []*user.User) ([]catalog.Item, error) {
	if len(merchants) == 0 {
		slog.Info("no new merchants, skipping items")
		return nil, nil
	}

	type seedItem struct {
		name     string
		price    string
		quantity int
	}
	seeds := []seedItem{
		{"Copper Mug", "14.50", 120},
		{"Canvas Tote", "22.00", 80},
		{"Desk Lamp", "38.25", 45},
		{"Wool Scarf", "27.75", 60},
		{"Ceramic Planter", "19.99", 90},
		{"Leather Journal", "31.00", 50},
	}

	items := make([]catalog.Item, 0, len(seeds))
	for i, s := range seeds {
		it := catalog.Item{
			ID:         uuid.New().String(),
			MerchantID: merchants[i%len(merchants)].ID,
			Name:       s.name,
			Price:      decimal.RequireFromString(s.price),
			Quantity:   s.quantity,
		}
		if err := repo.Create(ctx, &it); err != nil {
			return nil, errors.Wrapf(err, "create item %s", s.name)
		}
		items = append(items, it)

		slog.Info("created item", slog.String("name", it.Name), slog.String("price", s.price))
	}
	return items, nil
}

// seedOrders walks each demo order through part of the lifecycle so every
// status shows up on the admin dashboard and shipped orders feed analytics.
func seedOrders(ctx context.Context, orders *order.Service, customers []*user.User, items []catalog.Item) error {
	if len(customers) == 0 || len(items) == 0 {
		slog.Info("no new customers or items, skipping orders")
		return nil
	}

	for i, customer := range customers {
		c := cart.New()
		for j, it := range items {
			for range (i+j)%3 + 1 {
				c.AddItem(it.ID)
			}
		}

		o, err := orders.FromCart(ctx, customer.ID, c.Items())
		if err != nil {
			return errors.Wrapf(err, "checkout for %s", customer.Email)
		}

		slog.Info("created order",
			slog.String("order", o.ID),
			slog.String("customer", customer.Email),
			slog.Int("total_count", o.TotalCount()),
		)

		// First customer's order ships, second's stays packaged, rest pending.
		switch i {
		case 0:
			for _, li := range o.Items {
				if err := orders.FulfillItem(ctx, li.ID); err != nil {
					return errors.Wrap(err, "fulfill line item")
				}
			}
			if err := orders.Package(ctx, o.ID); err != nil {
				return errors.Wrap(err, "package order")
			}
			if err := orders.Ship(ctx, o.ID); err != nil {
				return errors.Wrap(err, "ship order")
			}
			slog.Info("shipped order", slog.String("order", o.ID))
		case 1:
			if err := orders.Package(ctx, o.ID); err != nil {
				return errors.Wrap(err, "package order")
			}
			slog.Info("packaged order", slog.String("order", o.ID))
		}
	}
	return nil
}
