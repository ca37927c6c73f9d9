package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver for database/sql and sqlx
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/AntonStoeckl/library-lending-go/recordstore"
	"github.com/AntonStoeckl/library-lending-go/recordstore/filestore"
	"github.com/AntonStoeckl/library-lending-go/recordstore/sqlengine"
)

const (
	defaultMaxConnections    = int32(8)
	defaultMinConnections    = int32(2)
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5

	sqliteDriverName   = "sqlite"
	postgresDriverName = "postgres"
	sqliteDirMode      = 0o750
)

// Storage is the opened DocumentStore of the configured backend together with its connection.
type Storage struct {
	Store recordstore.DocumentStore
	close func() error
}

// Close releases the database connection. It is a no-op for the file backend.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

// PostgresPGXPoolConfig creates a pgxpool.Config for the DSN with the default pool limits.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(int(defaultMaxConnections))
	db.SetMaxIdleConns(int(defaultMinConnections))
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}

// OpenStorage opens the backend selected by cfg.Backend. SQL backends get their table created if it doesn't exist.
func OpenStorage(ctx context.Context, cfg Config, obs *Observability) (*Storage, error) {
	switch cfg.Backend {
	case BackendFile:
		store, err := filestore.New(cfg.DataDir, filestore.WithLogger(obs.Logger))
		if err != nil {
			return nil, err
		}

		return &Storage{Store: store}, nil

	case BackendSQLite:
		return openSQLite(ctx, cfg, obs)

	case BackendPostgres:
		return openPostgres(ctx, cfg, obs)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
	}
}

func sqlEngineOptions(cfg Config, obs *Observability, dialect string) []sqlengine.Option {
	options := []sqlengine.Option{
		sqlengine.WithDialect(dialect),
		sqlengine.WithTableName(cfg.TableName),
		sqlengine.WithLogger(obs.Logger),
		sqlengine.WithContextualLogger(obs.ContextualLogger),
	}

	if obs.Metrics != nil {
		options = append(options, sqlengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, sqlengine.WithTracing(obs.Tracing))
	}

	return options
}

func openSQLite(ctx context.Context, cfg Config, obs *Observability) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), sqliteDirMode); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open(sqliteDriverName, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	engine, err := sqlengine.NewFromSQLDB(db, sqlEngineOptions(cfg, obs, sqlengine.DialectSQLite)...)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return ensureSchema(ctx, engine, db.Close)
}

func openPostgres(ctx context.Context, cfg Config, obs *Observability) (*Storage, error) {
	options := sqlEngineOptions(cfg, obs, sqlengine.DialectPostgres)

	switch cfg.PostgresDriver {
	case DriverPGX:
		poolConfig, err := PostgresPGXPoolConfig(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("create pgx pool: %w", err)
		}

		engine, err := sqlengine.NewFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return ensureSchema(ctx, engine, func() error {
			pool.Close()
			return nil
		})

	case DriverSQL:
		db, err := sql.Open(postgresDriverName, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		configurePool(db)

		if err = db.PingContext(ctx); err != nil {
			return nil, errors.Join(fmt.Errorf("ping postgres: %w", err), db.Close())
		}

		engine, err := sqlengine.NewFromSQLDB(db, options...)
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}

		return ensureSchema(ctx, engine, db.Close)

	case DriverSQLX:
		db, err := sqlx.ConnectContext(ctx, postgresDriverName, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		configurePool(db.DB)

		engine, err := sqlengine.NewFromSQLX(db, options...)
		if err != nil {
			return nil, errors.Join(err, db.Close())
		}

		return ensureSchema(ctx, engine, db.Close)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.PostgresDriver)
	}
}

func ensureSchema(ctx context.Context, engine *sqlengine.Engine, closeDB func() error) (*Storage, error) {
	if err := engine.EnsureSchema(ctx); err != nil {
		return nil, errors.Join(err, closeDB())
	}

	return &Storage{Store: engine, close: closeDB}, nil
}
