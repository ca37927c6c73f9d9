package core

import (
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// ISBNString represents a book identifier, the primary key of the catalog.
type ISBNString = string

// UserIDString represents a user identifier, the primary key of the directory.
type UserIDString = string

// EventTypeString represents the type identifier of a domain event.
type EventTypeString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}
