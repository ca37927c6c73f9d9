package config

import (
	"context"

	"github.com/AntonStoeckl/library-lending-go/catalog"
	"github.com/AntonStoeckl/library-lending-go/directory"
	"github.com/AntonStoeckl/library-lending-go/lending"
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

// OpenLibrary builds the catalog, the directory and the lending engine on top of store and opens the engine.
func OpenLibrary(
	ctx context.Context,
	cfg Config,
	obs *Observability,
	store recordstore.DocumentStore,
) (*lending.Engine, lending.StartupReport, error) {

	books, err := catalog.NewStore(store, catalog.WithLogger(obs.Logger))
	if err != nil {
		return nil, lending.StartupReport{}, err
	}

	users, err := directory.NewStore(store, directory.WithLogger(obs.Logger))
	if err != nil {
		return nil, lending.StartupReport{}, err
	}

	options := []lending.Option{
		lending.WithLogger(obs.Logger),
		lending.WithContextualLogger(obs.ContextualLogger),
	}

	if obs.Metrics != nil {
		options = append(options, lending.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, lending.WithTracing(obs.Tracing))
	}

	if cfg.ReconcileOnOpen {
		options = append(options, lending.WithReconcileOnOpen())
	}

	engine, err := lending.NewEngine(books, users, options...)
	if err != nil {
		return nil, lending.StartupReport{}, err
	}

	report, err := engine.Open(ctx)
	if err != nil {
		return nil, report, err
	}

	return engine, report, nil
}
