package adapters

import (
	"context"
	"database/sql"
)

// queryExecer is the subset of *sql.DB and *sqlx.DB used by the adapters.
type queryExecer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// stdRows wraps standard library sql.Rows to implement DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Err returns the error encountered during iteration, if any.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

func query(ctx context.Context, db queryExecer, q string) (DBRows, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func exec(ctx context.Context, db queryExecer, q string) (DBResult, error) {
	result, err := db.ExecContext(ctx, q)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}
