package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
	"github.com/AntonStoeckl/library-lending-go/recordstore/sqlengine/internal/adapters"
)

const (
	// DialectPostgres selects PostgreSQL syntax and a JSONB payload column.
	DialectPostgres = "postgres"

	// DialectSQLite selects SQLite syntax and a TEXT payload column.
	DialectSQLite = "sqlite3"
)

const (
	defaultTableName = "library_documents"
	colCollection    = "collection"
	colPayload       = "payload"
	colUpdatedAt     = "updated_at"
	castJsonb        = "?::jsonb"
	currentTimestamp = "CURRENT_TIMESTAMP"
	upsertClause     = " ON CONFLICT (" + colCollection + ") DO UPDATE SET " +
		colPayload + " = excluded." + colPayload + ", " +
		colUpdatedAt + " = " + currentTimestamp

	createTablePostgres = `CREATE TABLE IF NOT EXISTS %s (
	collection TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	createTableSQLite = `CREATE TABLE IF NOT EXISTS %s (
	collection TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
)

var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrCreatingSchemaFailed  = errors.New("creating schema failed")
)

// Engine is a recordstore.DocumentStore keeping one row per collection in a SQL table.
type Engine struct {
	db               adapters.DBAdapter
	tableName        string
	dialect          string
	logger           recordstore.Logger
	metricsCollector recordstore.MetricsCollector
	tracingCollector recordstore.TracingCollector
	contextualLogger recordstore.ContextualLogger
}

// NewFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewFromSQLDB creates a new Engine using a sql.DB with optional configuration.
// Use WithDialect(DialectSQLite) for SQLite connections.
func NewFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	e := &Engine{
		db:        db,
		tableName: defaultTableName,
		dialect:   DialectPostgres,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// EnsureSchema creates the documents table if it does not exist yet.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(createTablePostgres, e.tableName)
	if e.dialect == DialectSQLite {
		ddl = fmt.Sprintf(createTableSQLite, e.tableName)
	}

	start := time.Now()
	_, execErr := e.db.Exec(ctx, ddl)
	e.logQueryWithDuration(ctx, ddl, operationSchema, time.Since(start))

	if execErr != nil {
		e.logError(ctx, logMsgCreateSchemaFailed, execErr)
		return errors.Join(ErrCreatingSchemaFailed, execErr)
	}

	return nil
}

// Load retrieves the document of the collection.
// Returns recordstore.ErrDocumentNotFound if no row exists for the collection.
func (e *Engine) Load(ctx context.Context, collection string) (doc recordstore.StorableDocument, err error) {
	if err = recordstore.ValidateCollectionName(collection); err != nil {
		return recordstore.StorableDocument{}, err
	}

	ctx, span := e.startTraceSpan(ctx, spanNameLoad, collection)
	start := time.Now()

	defer func() {
		e.finishOperation(ctx, span, operationLoad, time.Since(start), err)
	}()

	sqlQuery, buildErr := e.buildSelectQuery(collection)
	if buildErr != nil {
		e.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		return recordstore.StorableDocument{}, buildErr
	}

	payload, found, queryErr := e.queryPayload(ctx, sqlQuery)
	if queryErr != nil {
		return recordstore.StorableDocument{}, queryErr
	}

	if !found {
		return recordstore.StorableDocument{}, recordstore.ErrDocumentNotFound
	}

	doc, buildDocErr := recordstore.BuildStorableDocument(collection, []byte(payload))
	if buildDocErr != nil {
		e.logError(ctx, logMsgBuildDocumentFailed, buildDocErr, logAttrCollection, collection)
		return recordstore.StorableDocument{}, errors.Join(recordstore.ErrLoadingDocumentFailed, buildDocErr)
	}

	e.logOperation(ctx, logMsgDocumentLoaded, logAttrCollection, collection, logAttrBytes, len(payload))

	return doc, nil
}

// queryPayload executes the select and scans the payload of the first row.
func (e *Engine) queryPayload(ctx context.Context, sqlQuery string) (string, bool, error) {
	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, operationLoad, time.Since(start))

	if queryErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return "", false, errors.Join(recordstore.ErrLoadingDocumentFailed, queryErr)
	}
	defer e.closeRows(ctx, rows)

	var payload string

	if !rows.Next() {
		if iterErr := rows.Err(); iterErr != nil {
			e.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)
			return "", false, errors.Join(recordstore.ErrLoadingDocumentFailed, iterErr)
		}

		return "", false, nil
	}

	if scanErr := rows.Scan(&payload); scanErr != nil {
		e.logError(ctx, logMsgScanRowFailed, scanErr)
		return "", false, errors.Join(recordstore.ErrLoadingDocumentFailed, ErrScanningDBRowFailed, scanErr)
	}

	return payload, true, nil
}

// Save inserts or replaces the document of the collection with one statement.
func (e *Engine) Save(ctx context.Context, document recordstore.StorableDocument) (err error) {
	if err = recordstore.ValidateCollectionName(document.Collection); err != nil {
		return err
	}

	ctx, span := e.startTraceSpan(ctx, spanNameSave, document.Collection)
	start := time.Now()

	defer func() {
		e.finishOperation(ctx, span, operationSave, time.Since(start), err)
	}()

	sqlQuery, buildErr := e.buildUpsertQuery(document)
	if buildErr != nil {
		e.logError(ctx, logMsgBuildUpsertQueryFailed, buildErr, logAttrCollection, document.Collection)
		return buildErr
	}

	execStart := time.Now()
	_, execErr := e.db.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, operationSave, time.Since(execStart))

	if execErr != nil {
		e.logError(ctx, logMsgDBExecFailed, execErr, logAttrCollection, document.Collection)
		return errors.Join(recordstore.ErrSavingDocumentFailed, execErr)
	}

	e.logOperation(ctx, logMsgDocumentSaved, logAttrCollection, document.Collection, logAttrBytes, len(document.PayloadJSON))

	return nil
}

func (e *Engine) buildSelectQuery(collection string) (string, error) {
	selectStmt := goqu.Dialect(e.dialect).
		From(e.tableName).
		Select(colPayload).
		Where(goqu.C(colCollection).Eq(collection))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (e *Engine) buildUpsertQuery(document recordstore.StorableDocument) (string, error) {
	var payload any = string(document.PayloadJSON)
	if e.dialect == DialectPostgres {
		payload = goqu.L(castJsonb, string(document.PayloadJSON))
	}

	insertStmt := goqu.Dialect(e.dialect).
		Insert(e.tableName).
		Rows(goqu.Record{
			colCollection: document.Collection,
			colPayload:    payload,
			colUpdatedAt:  goqu.L(currentTimestamp),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	// The conflict clause is identical for PostgreSQL and SQLite (3.24+).
	return sqlQuery + upsertClause, nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// Ensure Engine implements recordstore.DocumentStore.
var _ recordstore.DocumentStore = (*Engine)(nil)
