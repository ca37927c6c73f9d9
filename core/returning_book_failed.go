package core

import (
	"time"
)

// ReturningBookFailedEventType is the event type identifier.
const ReturningBookFailedEventType = "ReturningBookFailed"

// ReturningBookFailed represents when returning a book fails due to business rule violations.
type ReturningBookFailed struct {
	EventType   EventTypeString
	ISBN        ISBNString
	UserID      UserIDString
	FailureInfo string
	OccurredAt  OccurredAtTS
}

// BuildReturningBookFailed creates a new ReturningBookFailed event.
func BuildReturningBookFailed(
	isbn ISBNString,
	userID UserIDString,
	failureInfo string,
	occurredAt time.Time,
) ReturningBookFailed {

	return ReturningBookFailed{
		EventType:   ReturningBookFailedEventType,
		ISBN:        isbn,
		UserID:      userID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReturningBookFailed) IsEventType() string {
	return ReturningBookFailedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReturningBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e ReturningBookFailed) IsErrorEvent() bool {
	return true
}
