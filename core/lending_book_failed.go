package core

import (
	"time"
)

// LendingBookFailedEventType is the event type identifier.
const LendingBookFailedEventType = "LendingBookFailed"

// LendingBookFailed represents when lending a book to a user fails due to business rule violations.
type LendingBookFailed struct {
	EventType   EventTypeString
	ISBN        ISBNString
	UserID      UserIDString
	FailureInfo string
	OccurredAt  OccurredAtTS
}

// BuildLendingBookFailed creates a new LendingBookFailed event.
func BuildLendingBookFailed(
	isbn ISBNString,
	userID UserIDString,
	failureInfo string,
	occurredAt time.Time,
) LendingBookFailed {

	return LendingBookFailed{
		EventType:   LendingBookFailedEventType,
		ISBN:        isbn,
		UserID:      userID,
		FailureInfo: failureInfo,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e LendingBookFailed) IsEventType() string {
	return LendingBookFailedEventType
}

// HasOccurredAt returns when this event occurred.
func (e LendingBookFailed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// IsErrorEvent returns true since this event represents a failed operation.
func (e LendingBookFailed) IsErrorEvent() bool {
	return true
}
