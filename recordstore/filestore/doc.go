// Package filestore provides a file based recordstore.DocumentStore.
//
// Every collection is stored as one JSON file <dir>/<collection>.json. Save writes the new
// document into a temporary file in the same directory, syncs it, and renames it over the
// previous file, so readers see either the old or the new document and never a partial write.
package filestore
