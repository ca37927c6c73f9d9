// Package core contains the domain model of the library: books, users, the lending
// domain events and the DecisionResult returned by the pure decision functions.
//
// This package is the functional core. It has no knowledge of storage or observability,
// so everything in here can be unit tested without any infrastructure.
//
// Key types:
//   - Book: a catalog record identified by its ISBN
//   - User: a directory record identified by its user ID, holding ISBN references to borrowed books
//   - DomainEvent: the outcome of a lending decision (BookLentToUser, BookReturnedByUser, ...)
//   - DecisionResult: the tagged outcome of a decision (success event or failure event plus error)
package core
