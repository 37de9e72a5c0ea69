package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKS"

const (
	DefaultTimeout         = 15 * time.Second
	DefaultTokenTTL        = 3 * time.Hour
	DefaultRateLimitWindow = time.Minute
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port" validate:"required,numeric"`
	Environment  string        `mapstructure:"environment" validate:"oneof=development test production"`
	EnforceHTTPS bool          `mapstructure:"enforce_https"`
	PageSize     int           `mapstructure:"page_size" validate:"gte=1,lte=100"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	// Driver is "sqlite3" (mattn, cgo), "sqlite" (modernc, pure Go) or "postgres".
	Driver       string `mapstructure:"driver" validate:"oneof=sqlite3 sqlite postgres"`
	Path         string `mapstructure:"path" validate:"required_unless=Driver postgres"`
	URL          string `mapstructure:"url" validate:"required_if=Driver postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	LogQueries   bool   `mapstructure:"log_queries"`
	Trace        bool   `mapstructure:"trace"`
}

func (d DatabaseConfig) IsPostgres() bool {
	return d.Driver == "postgres"
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Store        string        `mapstructure:"store" validate:"oneof=memory redis"`
	RedisURL     string        `mapstructure:"redis_url" validate:"required_if=Store redis"`
	AuthRequests int           `mapstructure:"auth_requests" validate:"gte=1"`
	ReadRequests int           `mapstructure:"read_requests" validate:"gte=1"`
	Requests     int           `mapstructure:"requests" validate:"gte=1"`
	Window       time.Duration `mapstructure:"window" validate:"gt=0"`
}

type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name" validate:"required"`
	ServiceVersion string `mapstructure:"service_version"`
	MetricsPort    string `mapstructure:"metrics_port" validate:"required,numeric"`
	// OTLPEndpoint empty means spans are created but never exported.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	LokiURL      string `mapstructure:"loki_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.enforce_https", false)
	v.SetDefault("server.page_size", 10)
	v.SetDefault("server.read_timeout", DefaultTimeout)
	v.SetDefault("server.write_timeout", DefaultTimeout)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "database.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.trace", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", DefaultTokenTTL)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.store", "memory")
	v.SetDefault("rate_limit.redis_url", "")
	v.SetDefault("rate_limit.auth_requests", 10)
	v.SetDefault("rate_limit.read_requests", 100)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", DefaultRateLimitWindow)

	v.SetDefault("telemetry.service_name", "tasksapi")
	v.SetDefault("telemetry.service_version", "dev")
	v.SetDefault("telemetry.metrics_port", "9090")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.loki_url", "")

	v.SetDefault("log.level", "info")
}

// Load reads defaults, then the optional YAML file at path, then TASKS_*
// environment variables, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}
