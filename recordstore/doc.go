// Package recordstore provides the storage contract for whole-collection documents.
//
// A collection (the catalog, the user directory) is serialized by its owner into a
// StorableDocument and handed to a DocumentStore, which persists it and reads it back
// without interpreting the payload. Implementations live in sub-packages:
//   - filestore: one JSON file per collection, replaced atomically
//   - sqlengine: one row per collection in a PostgreSQL or SQLite table
//
// This package also defines the dependency-free observability interfaces
// (Logger, ContextualLogger, MetricsCollector, TracingCollector) used throughout the module.
//
// Common usage pattern:
//
//	doc, err := recordstore.BuildStorableDocument("books", payloadJSON)
//	if err != nil {
//		// handle error
//	}
//
//	err = store.Save(ctx, doc)
//
//	doc, err = store.Load(ctx, "books")
//	if errors.Is(err, recordstore.ErrDocumentNotFound) {
//		// first run, nothing persisted yet
//	}
package recordstore
