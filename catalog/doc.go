// Package catalog owns the Book records of the library.
//
// A Store keeps all books in memory in insertion order and persists them as one whole document
// through a recordstore.DocumentStore. The Store is not safe for concurrent use, the lending
// engine serializes all access.
package catalog
