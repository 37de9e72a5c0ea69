package database

import (
	"context"
	"io"

	"tasksapi/internal/adapter/database/postgres"
	pgrepository "tasksapi/internal/adapter/database/postgres/repository"
	"tasksapi/internal/adapter/database/sqlite"
	"tasksapi/internal/adapter/database/sqlite/repository"
	"tasksapi/internal/core/port"
	"tasksapi/pkg/config"
)

// Repositories are the stores of one configured database.
type Repositories struct {
	Users  port.UserRepository
	Tasks  port.TaskRepository
	Health port.HealthChecker
	closer io.Closer
}

// Open connects to the database selected by cfg.Driver and migrates it.
func Open(ctx context.Context, cfg config.DatabaseConfig, telemetry port.Telemetry) (*Repositories, error) {
	if cfg.IsPostgres() {
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return &Repositories{
			Users:  pgrepository.NewUserRepository(db, telemetry),
			Tasks:  pgrepository.NewTaskRepository(db, telemetry),
			Health: db,
			closer: db,
		}, nil
	}

	db, err := sqlite.New(cfg)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Users:  repository.NewUserRepository(db, telemetry),
		Tasks:  repository.NewTaskRepository(db, telemetry),
		Health: db,
		closer: db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.closer.Close()
}

// MigrateDown reverts every migration of the configured database.
func MigrateDown(ctx context.Context, cfg config.DatabaseConfig) error {
	if cfg.IsPostgres() {
		return postgres.MigrateDown(cfg.URL)
	}

	db, err := sqlite.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return sqlite.MigrateDown(db.DB)
}

// MigrateUp applies pending migrations without keeping the connection.
func MigrateUp(ctx context.Context, cfg config.DatabaseConfig) error {
	repos, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}

	return repos.Close()
}
