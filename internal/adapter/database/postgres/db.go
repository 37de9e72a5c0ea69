package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tasksapi/db/migrations"
	"tasksapi/pkg/config"
)

type DB struct {
	*pgxpool.Pool
	QueryBuilder squirrel.StatementBuilderType
	url          string
}

// New connects to cfg.URL, applies pending migrations and returns a DB
// ready for the repositories.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := MigrateUp(cfg.URL); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{
		Pool:         pool,
		QueryBuilder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		url:          cfg.URL,
	}, nil
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.Ping(ctx)
}

// Close matches the io.Closer shape of the sqlite store.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

func withMigrator(url string, fn func(*migrate.Migrate) error) error {
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.Postgres, "postgres")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	return fn(m)
}

func MigrateUp(url string) error {
	return withMigrator(url, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		return nil
	})
}

func MigrateDown(url string) error {
	return withMigrator(url, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to revert migrations: %w", err)
		}

		return nil
	})
}
