package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rs/zerolog"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"

	"tasksapi/db/migrations"
	"tasksapi/pkg/config"
)

const (
	// DriverCgo is mattn/go-sqlite3.
	DriverCgo = "sqlite3"
	// DriverPure is modernc.org/sqlite.
	DriverPure = "sqlite"

	MemoryPath = ":memory:"
)

type DB struct {
	*sql.DB
	QueryBuilder squirrel.StatementBuilderType
	Driver       string
}

// New opens the database, applies pending migrations and returns a DB ready
// for the repositories.
func New(cfg config.DatabaseConfig) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverCgo
	}

	if driver != DriverCgo && driver != DriverPure {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	dsn := buildDSN(driver, cfg.Path)

	sqlDB, err := open(driver, dsn, cfg)
	if err != nil {
		return nil, err
	}

	if isMemory(cfg.Path) {
		// every connection to :memory: is a distinct database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 10
		}

		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{
		DB:           sqlDB,
		QueryBuilder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		Driver:       driver,
	}, nil
}

func open(driver, dsn string, cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)

	name := driverName(driver)

	if cfg.Trace {
		sqlDB, err = otelsql.Open(name, dsn,
			otelsql.WithDBSystem("sqlite"),
			otelsql.WithDBName("tasksapi"),
			otelsql.WithTracerProvider(otel.GetTracerProvider()),
		)
	} else {
		sqlDB, err = sql.Open(name, dsn)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if !cfg.LogQueries {
		return sqlDB, nil
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger),
		sqldblogger.WithSQLQueryAsMessage(true),
	)

	// nothing was dialed through the unwrapped pool yet
	sqlDB.Close()

	return logged, nil
}

// buildDSN turns foreign keys on for every connection so task rows follow
// their owner on delete.
func buildDSN(driver, path string) string {
	if path == "" {
		path = MemoryPath
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	if driver == DriverPure {
		return path + separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	}

	return path + separator + "_foreign_keys=on&_busy_timeout=5000"
}

func isMemory(path string) bool {
	return path == "" || path == MemoryPath || strings.Contains(path, "mode=memory")
}

func newMigrator(sqlDB *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

// MigrateUp applies every pending migration. The migrator is not closed
// since that would close sqlDB as well.
func MigrateUp(sqlDB *sql.DB) error {
	m, err := newMigrator(sqlDB)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func MigrateDown(sqlDB *sql.DB) error {
	m, err := newMigrator(sqlDB)
	if err != nil {
		return err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}

	return nil
}
