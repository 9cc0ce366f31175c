package app

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/drinks-api/internal/domain/drink"
	"github.com/xenking/drinks-api/internal/storage/postgres"
	"github.com/xenking/drinks-api/internal/storage/sqlite"
)

// Store is an opened drink store with its lifecycle hooks.
type Store struct {
	Drinks drink.Repository

	ping  func(ctx context.Context) error
	reset func(ctx context.Context) error
	close func()
}

// Ping checks the connection to the underlying database.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Reset drops all drinks and recreates the schema.
func (s *Store) Reset(ctx context.Context) error { return s.reset(ctx) }

// Close releases the database connections.
func (s *Store) Close() { s.close() }

// OpenStore connects to the configured driver and applies the schema.
func OpenStore(ctx context.Context, cfg StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Store{
			Drinks: postgres.NewDrinkRepository(pool),
			ping:   pool.Ping,
			reset:  func(ctx context.Context) error { return postgres.Reset(ctx, pool) },
			close:  pool.Close,
		}, nil
	case DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		if err := sqlite.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Store{
			Drinks: sqlite.NewDrinkRepository(conn),
			ping:   conn.PingContext,
			reset:  func(ctx context.Context) error { return sqlite.Reset(ctx, conn) },
			close:  func() { _ = conn.Close() },
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
