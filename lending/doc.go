// Package lending coordinates the book catalog and the user directory.
//
// The Engine is the only component that changes both collections together. Every borrow or return
// is validated by a pure decide function over a snapshot of both stores, only a successful
// decision is applied, and then the catalog and the directory are saved in that order.
//
// The Engine serializes all of its operations with a mutex, so it can be shared between goroutines
// of one process. Several processes working on the same storage are not supported.
package lending
