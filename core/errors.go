package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a book or user is added with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrEmptyKey is returned when a book or user is built without its key.
	ErrEmptyKey = errors.New("empty key supplied")

	// ErrNotFound is the common parent of ErrUserNotFound and ErrBookNotFound.
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound is returned when a user ID is not registered in the directory.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrBookNotFound is returned when an ISBN is not present in the catalog.
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)

	// ErrBookUnavailable is returned when a book that is currently on loan is requested.
	ErrBookUnavailable = errors.New("book is unavailable")

	// ErrLoanNotFound is returned when a user returns a book they have not borrowed.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrStorageUnreadable is reported when persisted data could not be read and the
	// collection was recovered as empty.
	ErrStorageUnreadable = errors.New("storage unreadable")

	// ErrStorageUnwritable is returned when a collection could not be persisted.
	// The in-memory state is then ahead of the persisted state.
	ErrStorageUnwritable = errors.New("storage unwritable")
)
