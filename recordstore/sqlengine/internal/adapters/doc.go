// Package adapters provide database adapter implementations for the SQL document store.
//
// Three connection types are supported: pgxpool.Pool, sql.DB and sqlx.DB. They are
// hidden behind the common DBAdapter interface, so the engine only ever deals with
// plain SQL strings, rows and results.
package adapters
