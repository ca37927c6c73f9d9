package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
)

const (
	// BackendFile stores every collection as a JSON file in the data directory.
	BackendFile = "file"

	// BackendSQLite stores the collections in a SQLite database file.
	BackendSQLite = "sqlite"

	// BackendPostgres stores the collections in a PostgreSQL table.
	BackendPostgres = "postgres"
)

const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"
)

const (
	MetricsNone       = "none"
	MetricsPrometheus = "prometheus"
	MetricsOTel       = "otel"
)

var (
	// ErrInvalidBackend is returned when LIBRARY_BACKEND names an unknown backend.
	ErrInvalidBackend = errors.New("invalid storage backend")

	// ErrInvalidDriver is returned when LIBRARY_POSTGRES_DRIVER names an unknown driver.
	ErrInvalidDriver = errors.New("invalid postgres driver")

	// ErrMissingDSN is returned when the postgres backend is selected without a DSN.
	ErrMissingDSN = errors.New("postgres dsn must not be empty")

	// ErrInvalidMetrics is returned when LIBRARY_METRICS names an unknown metrics backend.
	ErrInvalidMetrics = errors.New("invalid metrics backend")

	// ErrInvalidLogLevel is returned when LIBRARY_LOG_LEVEL can't be parsed.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config is the process configuration of the librarian CLI, read from LIBRARY_* environment variables.
type Config struct {
	Backend         string `env:"LIBRARY_BACKEND" envDefault:"file"`
	DataDir         string `env:"LIBRARY_DATA_DIR" envDefault:"./library-data"`
	SQLitePath      string `env:"LIBRARY_SQLITE_PATH" envDefault:"./library.db"`
	PostgresDSN     string `env:"LIBRARY_POSTGRES_DSN"`
	PostgresDriver  string `env:"LIBRARY_POSTGRES_DRIVER" envDefault:"pgx"`
	TableName       string `env:"LIBRARY_TABLE_NAME" envDefault:"library_documents"`
	LogLevel        string `env:"LIBRARY_LOG_LEVEL" envDefault:"warn"`
	LogFile         string `env:"LIBRARY_LOG_FILE"`
	LogMaxSizeMB    int    `env:"LIBRARY_LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxFiles     int    `env:"LIBRARY_LOG_MAX_FILES" envDefault:"5"`
	Metrics         string `env:"LIBRARY_METRICS" envDefault:"none"`
	MetricsFile     string `env:"LIBRARY_METRICS_FILE"`
	ReconcileOnOpen bool   `env:"LIBRARY_RECONCILE_ON_OPEN" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// FromEnv parses and validates the Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the enumerated settings and the settings the selected backend depends on.
func (c Config) Validate() error {
	if !slices.Contains([]string{BackendFile, BackendSQLite, BackendPostgres}, c.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}

	if c.Backend == BackendPostgres {
		if c.PostgresDSN == "" {
			return ErrMissingDSN
		}

		if !slices.Contains([]string{DriverPGX, DriverSQL, DriverSQLX}, c.PostgresDriver) {
			return fmt.Errorf("%w: %q", ErrInvalidDriver, c.PostgresDriver)
		}
	}

	if !slices.Contains([]string{MetricsNone, MetricsPrometheus, MetricsOTel}, c.Metrics) {
		return fmt.Errorf("%w: %q", ErrInvalidMetrics, c.Metrics)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}
