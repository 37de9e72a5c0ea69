package test

import (
	"log"
	"testing"

	"tasksapi/internal/adapter/database/sqlite"
	"tasksapi/pkg/config"
)

const JWTSecret = "test-secret-for-signing-tokens"

// InitTestDB opens a migrated in-memory sqlite database. Each call returns
// an isolated database.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.New(config.DatabaseConfig{
		Driver: sqlite.DriverCgo,
		Path:   sqlite.MemoryPath,
	})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// Config returns a valid configuration for tests: in-memory store, no rate
// limiting and no exporters.
func Config() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "8080",
			Environment:  "test",
			PageSize:     10,
			ReadTimeout:  config.DefaultTimeout,
			WriteTimeout: config.DefaultTimeout,
		},
		Database: config.DatabaseConfig{
			Driver:       sqlite.DriverCgo,
			Path:         sqlite.MemoryPath,
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret: JWTSecret,
			TokenTTL:  config.DefaultTokenTTL,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:      false,
			Store:        "memory",
			AuthRequests: 10,
			ReadRequests: 100,
			Requests:     20,
			Window:       config.DefaultRateLimitWindow,
		},
		Telemetry: config.TelemetryConfig{
			ServiceName: "tasksapi-test",
			MetricsPort: "9090",
		},
		Log: config.LogConfig{Level: "error"},
	}
}

func CleanDB(t *testing.T, db *sqlite.DB) {
	t.Helper()

	for _, table := range []string{"tasks", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}
