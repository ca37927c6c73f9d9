// Package sqlengine provides a SQL backed recordstore.DocumentStore for PostgreSQL and SQLite.
//
// Each collection is one row in a documents table (default "library_documents"):
//
//	collection  TEXT PRIMARY KEY
//	payload     JSONB (PostgreSQL) / TEXT (SQLite)
//	updated_at  TIMESTAMPTZ / TIMESTAMP
//
// Save is a single INSERT ... ON CONFLICT (collection) DO UPDATE statement, so a document is
// always replaced atomically. Queries are built with goqu for the configured dialect.
//
// The engine can be created from a pgxpool.Pool, a sql.DB (lib/pq, modernc.org/sqlite, ...)
// or a sqlx.DB:
//
//	engine, err := sqlengine.NewFromPGXPool(pool, sqlengine.WithLogger(logger))
//	engine, err := sqlengine.NewFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
//
// Observability is optional and dependency-free, see the With* options.
package sqlengine
