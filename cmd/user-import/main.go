// Command user-import loads accounts from gzipped CSV exports of the legacy
// storefront. Exports overlap heavily (each nightly dump contains the full
// account table), so the importer dedupes emails with a bloom filter before
// touching the database: a miss means the email is definitely new and is
// inserted directly, a hit falls back to an exact lookup.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/little-shop/internal/domain/user"
	"github.com/xenking/little-shop/internal/storage/postgres"
)

const (
	bloomFPR      = 0.001
	progressEvery = 100_000
	numColumns    = 7 // email,name,street_address,city,state,zip_code,role
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

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no export files given: pass one or more users-*.csv.gz paths")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("user import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("user import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: count rows concurrently so the filter can be sized up front.
	slog.Info("pass 1: counting export rows", slog.Int("files", len(files)))

	total, err := countRows(ctx, files)
	if err != nil {
		return errors.Wrap(err, "count rows")
	}
	if total == 0 {
		slog.Info("exports are empty, nothing to import")
		return nil
	}

	slog.Info("pass 1 complete", slog.Uint64("total_rows", total))

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Pass 2: stream each export and insert unseen accounts.
	slog.Info("pass 2: importing accounts")

	imp := newImporter(postgres.NewUserRepository(pool), uint(total))
	for i, f := range files {
		if err := imp.importFile(ctx, f); err != nil {
			return errors.Wrapf(err, "import file %d", i+1)
		}
	}

	slog.Info("pass 2 complete",
		slog.Uint64("imported", imp.imported),
		slog.Uint64("duplicates", imp.duplicates),
		slog.Uint64("invalid", imp.invalid),
	)
	return nil
}

// countRows streams every file concurrently and returns the combined row count.
func countRows(ctx context.Context, files []string) (uint64, error) {
	var total atomic.Uint64

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			var count uint64
			if err := streamCSVGz(ctx, f, func([]string) error {
				count++
				return nil
			}); err != nil {
				return errors.Wrapf(err, "count file %d", i+1)
			}

			slog.Info("counted file", slog.Int("file", i+1), slog.Uint64("rows", count))
			total.Add(count)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// importer carries the dedupe filter and counters across export files.
type importer struct {
	repo   user.Repository
	filter *bloom.BloomFilter

	imported   uint64
	duplicates uint64
	invalid    uint64
}

func newImporter(repo user.Repository, capacity uint) *importer {
	return &importer{
		repo:   repo,
		filter: bloom.NewWithEstimates(capacity, bloomFPR),
	}
}

func (imp *importer) importFile(ctx context.Context, path string) error {
	var count uint64

	err := streamCSVGz(ctx, path, func(record []string) error {
		count++
		if count%progressEvery == 0 {
			slog.Info("pass 2 progress", slog.String("file", path), slog.Uint64("rows", count))
		}
		return imp.importRecord(ctx, record)
	})
	if err != nil {
		return err
	}

	slog.Info("imported file", slog.String("file", path), slog.Uint64("rows", count))
	return nil
}

func (imp *importer) importRecord(ctx context.Context, record []string) error {
	u, ok := parseRecord(record)
	if !ok {
		imp.invalid++
		return nil
	}

	// The filter has no false negatives, so a miss is definitely a new email.
	// A hit may be a false positive and needs an exact check.
	if imp.filter.TestAndAddString(u.Email) {
		existing, err := imp.repo.GetByEmail(ctx, u.Email)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return errors.Wrapf(err, "look up %s", u.Email)
		}
		if existing != nil {
			imp.duplicates++
			return nil
		}
	}

	if err := imp.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			imp.duplicates++
			return nil
		}
		return errors.Wrapf(err, "create %s", u.Email)
	}

	imp.imported++
	return nil
}

// parseRecord maps one CSV row to an account. Imported accounts get a random
// unguessable password; people from the legacy system sign in via the
// password reset flow.
func parseRecord(record []string) (*user.User, bool) {
	if len(record) != numColumns {
		return nil, false
	}

	email := strings.ToLower(strings.TrimSpace(record[0]))
	if email == "" || !strings.Contains(email, "@") {
		return nil, false
	}

	role, ok := parseRole(strings.TrimSpace(record[6]))
	if !ok {
		return nil, false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.MinCost)
	if err != nil {
		return nil, false
	}

	return &user.User{
		ID:            uuid.New().String(),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		Name:          strings.TrimSpace(record[1]),
		StreetAddress: strings.TrimSpace(record[2]),
		City:          strings.TrimSpace(record[3]),
		State:         strings.TrimSpace(record[4]),
		ZipCode:       strings.TrimSpace(record[5]),
		Enabled:       true,
	}, true
}

func parseRole(s string) (user.Role, bool) {
	switch s {
	case "", "customer":
		return user.RoleCustomer, true
	case "merchant":
		return user.RoleMerchant, true
	case "admin":
		return user.RoleAdmin, true
	default:
		return 0, false
	}
}

// streamCSVGz opens a gzip-compressed CSV file and calls fn for each record,
// skipping the header row.
func streamCSVGz(ctx context.Context, path string, fn func(record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = -1

	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if first && strings.EqualFold(strings.TrimSpace(record[0]), "email") {
			continue
		}

		if err := fn(record); err != nil {
			return err
		}
	}
}
