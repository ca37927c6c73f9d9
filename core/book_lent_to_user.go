package core

import (
	"time"
)

// BookLentToUserEventType is the event type identifier.
const BookLentToUserEventType = "BookLentToUser"

// BookLentToUser represents when a book is lent to a user.
type BookLentToUser struct {
	EventType  EventTypeString
	ISBN       ISBNString
	UserID     UserIDString
	OccurredAt OccurredAtTS
}

// BuildBookLentToUser creates a new BookLentToUser event.
func BuildBookLentToUser(isbn ISBNString, userID UserIDString, occurredAt time.Time) BookLentToUser {
	return BookLentToUser{
		EventType:  BookLentToUserEventType,
		ISBN:       isbn,
		UserID:     userID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookLentToUser) IsEventType() string {
	return BookLentToUserEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookLentToUser) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns false since this event represents a successful operation.
func (e BookLentToUser) IsErrorEvent() bool {
	return false
}
