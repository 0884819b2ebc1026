// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/kigopro/kigo/internal/idgen"
	"github.com/kigopro/kigo/internal/listing"
	"github.com/kigopro/kigo/internal/model"
	"github.com/kigopro/kigo/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db, now: time.Now}, nil
}

// NewWithDB wraps an open database without migrating it. now is the clock
// used for timestamps and campaign status; nil means time.Now.
func NewWithDB(db *sql.DB, now func() time.Time) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{db: db, now: now}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{ops{db: tx, now: s.now}}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ops() ops { return ops{db: s.db, now: s.now} }

func (s *PostgresStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	return s.ops().createCustomer(ctx, c)
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return queryGetCustomer(ctx, s.db, id)
}

func (s *PostgresStore) SearchCustomers(ctx context.Context, req model.ListRequest) (listing.Page[*model.Customer], error) {
	return querySearchCustomers(ctx, s.db, s.ops().today(), req)
}

func (s *PostgresStore) CreateToken(ctx context.Context, t *model.Token) error {
	return s.ops().createToken(ctx, t)
}

func (s *PostgresStore) GetToken(ctx context.Context, id string) (*model.Token, error) {
	return queryGetToken(ctx, s.db, id)
}

func (s *PostgresStore) UpdateToken(ctx context.Context, t *model.Token) error {
	return s.ops().updateToken(ctx, t)
}

func (s *PostgresStore) ListTokens(ctx context.Context, customerID string, req model.ListRequest) (listing.Page[*model.Token], error) {
	return queryListTokens(ctx, s.db, s.ops().today(), customerID, req)
}

func (s *PostgresStore) ListCatalog(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error) {
	return queryListCatalog(ctx, s.db, s.ops().today(), req)
}

func (s *PostgresStore) CreateAd(ctx context.Context, a *model.Ad) error {
	return s.ops().createAd(ctx, a)
}

func (s *PostgresStore) GetAd(ctx context.Context, id string) (*model.Ad, error) {
	return queryGetAd(ctx, s.db, id)
}

func (s *PostgresStore) UpdateAd(ctx context.Context, a *model.Ad) error {
	return s.ops().updateAd(ctx, a)
}

func (s *PostgresStore) ListAds(ctx context.Context, req model.ListRequest) (listing.Page[*model.Ad], error) {
	return queryListAds(ctx, s.db, s.ops().today(), req)
}

func (s *PostgresStore) CreateAdGroup(ctx context.Context, g *model.AdGroup) error {
	return s.ops().createAdGroup(ctx, g)
}

func (s *PostgresStore) GetAdGroup(ctx context.Context, id string) (*model.AdGroup, error) {
	return queryGetAdGroup(ctx, s.db, id)
}

func (s *PostgresStore) UpdateAdGroup(ctx context.Context, g *model.AdGroup) error {
	return s.ops().updateAdGroup(ctx, g)
}

func (s *PostgresStore) ListAdGroups(ctx context.Context, req model.ListRequest) (listing.Page[*model.AdGroup], error) {
	return queryListAdGroups(ctx, s.db, s.ops().today(), req)
}

func (s *PostgresStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.ops().createCampaign(ctx, c)
}

func (s *PostgresStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return queryGetCampaign(ctx, s.db, s.ops().today(), id)
}

func (s *PostgresStore) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.ops().updateCampaign(ctx, c)
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, req model.ListRequest) (listing.Page[*model.Campaign], error) {
	return queryListCampaigns(ctx, s.db, s.ops().today(), req)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, e *model.Event) error {
	return s.ops().recordEvent(ctx, e)
}

func (s *PostgresStore) ListEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryListEvents(ctx, s.db, entityID)
}

// ops holds the write paths shared by PostgresStore and txStore: they fill
// IDs and timestamps from the clock before running the query.
type ops struct {
	db  executor
	now func() time.Time
}

func (o ops) today() model.Date { return model.DateOf(o.now()) }

func (o ops) createCustomer(ctx context.Context, c *model.Customer) error {
	if err := idgen.Assign(&c.ID, idgen.Customer); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = o.now().UTC()
	}
	return queryCreateCustomer(ctx, o.db, c)
}

func (o ops) createToken(ctx context.Context, t *model.Token) error {
	if err := idgen.Assign(&t.ID, idgen.Token); err != nil {
		return err
	}
	now := o.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return queryCreateToken(ctx, o.db, t)
}

func (o ops) updateToken(ctx context.Context, t *model.Token) error {
	t.UpdatedAt = o.now().UTC()
	return queryUpdateToken(ctx, o.db, t)
}

func (o ops) createAd(ctx context.Context, a *model.Ad) error {
	if err := idgen.Assign(&a.ID, idgen.Ad); err != nil {
		return err
	}
	now := o.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return queryCreateAd(ctx, o.db, a)
}

func (o ops) updateAd(ctx context.Context, a *model.Ad) error {
	a.UpdatedAt = o.now().UTC()
	return queryUpdateAd(ctx, o.db, a)
}

func (o ops) createAdGroup(ctx context.Context, g *model.AdGroup) error {
	if err := idgen.Assign(&g.ID, idgen.AdGroup); err != nil {
		return err
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = o.today()
	}
	if g.LastModified.IsZero() {
		g.LastModified = g.CreatedAt
	}
	return queryCreateAdGroup(ctx, o.db, g)
}

func (o ops) updateAdGroup(ctx context.Context, g *model.AdGroup) error {
	g.LastModified = o.today()
	return queryUpdateAdGroup(ctx, o.db, g)
}

func (o ops) createCampaign(ctx context.Context, c *model.Campaign) error {
	if err := idgen.Assign(&c.ID, idgen.Campaign); err != nil {
		return err
	}
	now := o.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.RefreshStatus(o.today())
	return queryCreateCampaign(ctx, o.db, c)
}

func (o ops) updateCampaign(ctx context.Context, c *model.Campaign) error {
	c.UpdatedAt = o.now().UTC()
	c.RefreshStatus(o.today())
	return queryUpdateCampaign(ctx, o.db, c)
}

func (o ops) recordEvent(ctx context.Context, e *model.Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = o.now().UTC()
	}
	return queryRecordEvent(ctx, o.db, e)
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	ops
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	return s.createCustomer(ctx, c)
}

func (s *txStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return queryGetCustomer(ctx, s.db, id)
}

func (s *txStore) SearchCustomers(ctx context.Context, req model.ListRequest) (listing.Page[*model.Customer], error) {
	return querySearchCustomers(ctx, s.db, s.today(), req)
}

func (s *txStore) CreateToken(ctx context.Context, t *model.Token) error {
	return s.createToken(ctx, t)
}

func (s *txStore) GetToken(ctx context.Context, id string) (*model.Token, error) {
	return queryGetToken(ctx, s.db, id)
}

func (s *txStore) UpdateToken(ctx context.Context, t *model.Token) error {
	return s.updateToken(ctx, t)
}

func (s *txStore) ListTokens(ctx context.Context, customerID string, req model.ListRequest) (listing.Page[*model.Token], error) {
	return queryListTokens(ctx, s.db, s.today(), customerID, req)
}

func (s *txStore) ListCatalog(ctx context.Context, req model.ListRequest) (listing.Page[*model.Token], error) {
	return queryListCatalog(ctx, s.db, s.today(), req)
}

func (s *txStore) CreateAd(ctx context.Context, a *model.Ad) error {
	return s.createAd(ctx, a)
}

func (s *txStore) GetAd(ctx context.Context, id string) (*model.Ad, error) {
	return queryGetAd(ctx, s.db, id)
}

func (s *txStore) UpdateAd(ctx context.Context, a *model.Ad) error {
	return s.updateAd(ctx, a)
}

func (s *txStore) ListAds(ctx context.Context, req model.ListRequest) (listing.Page[*model.Ad], error) {
	return queryListAds(ctx, s.db, s.today(), req)
}

func (s *txStore) CreateAdGroup(ctx context.Context, g *model.AdGroup) error {
	return s.createAdGroup(ctx, g)
}

func (s *txStore) GetAdGroup(ctx context.Context, id string) (*model.AdGroup, error) {
	return queryGetAdGroup(ctx, s.db, id)
}

func (s *txStore) UpdateAdGroup(ctx context.Context, g *model.AdGroup) error {
	return s.updateAdGroup(ctx, g)
}

func (s *txStore) ListAdGroups(ctx context.Context, req model.ListRequest) (listing.Page[*model.AdGroup], error) {
	return queryListAdGroups(ctx, s.db, s.today(), req)
}

func (s *txStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.createCampaign(ctx, c)
}

func (s *txStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	return queryGetCampaign(ctx, s.db, s.today(), id)
}

func (s *txStore) UpdateCampaign(ctx context.Context, c *model.Campaign) error {
	return s.updateCampaign(ctx, c)
}

func (s *txStore) ListCampaigns(ctx context.Context, req model.ListRequest) (listing.Page[*model.Campaign], error) {
	return queryListCampaigns(ctx, s.db, s.today(), req)
}

func (s *txStore) RecordEvent(ctx context.Context, e *model.Event) error {
	return s.recordEvent(ctx, e)
}

func (s *txStore) ListEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryListEvents(ctx, s.db, entityID)
}

// RunInTransaction on a txStore reuses the current transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op on a transaction store.
func (s *txStore) Close() error {
	return nil
}
