package lending

import (
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-lending-go/core"
)

const (
	failureReasonUserNotRegistered = "user is not registered"
	failureReasonBookNotInCatalog  = "book is not in the catalog"
	failureReasonBookOnLoan        = "book is already on loan"
	failureReasonBookNotBorrowed   = "book is not borrowed by this user"
)

// state is the snapshot of both stores a decision needs.
type state struct {
	userExists      bool
	userHasBorrowed bool
	bookExists      bool
	bookOnLoan      bool
}

// decideBorrow implements the business rules for lending a book to a user.
//
// Business Rules:
//
//	GIVEN: a user with userID and a book with isbn
//	WHEN: the user borrows the book
//	THEN: BookLentToUser is generated
//	ERROR: core.ErrUserNotFound if the user is not registered
//	ERROR: core.ErrBookNotFound if the book is not in the catalog
//	ERROR: core.ErrBookUnavailable if the book is on loan, also when this user holds it
//
// The first failing rule wins.
func decideBorrow(s state, userID core.UserIDString, isbn core.ISBNString, now time.Time) core.DecisionResult {
	if !s.userExists {
		return lendingFailed(userID, isbn, failureReasonUserNotRegistered, core.ErrUserNotFound, now)
	}

	if !s.bookExists {
		return lendingFailed(userID, isbn, failureReasonBookNotInCatalog, core.ErrBookNotFound, now)
	}

	if s.bookOnLoan {
		return lendingFailed(userID, isbn, failureReasonBookOnLoan, core.ErrBookUnavailable, now)
	}

	return core.SuccessDecision(core.BuildBookLentToUser(isbn, userID, now))
}

// decideReturn implements the business rules for a user returning a book.
//
// Business Rules:
//
//	GIVEN: a user with userID and a book with isbn
//	WHEN: the user returns the book
//	THEN: BookReturnedByUser is generated
//	ERROR: core.ErrUserNotFound if the user is not registered
//	ERROR: core.ErrLoanNotFound if the user has not borrowed the book, even if someone else has
//	ERROR: core.ErrBookNotFound if the borrowed reference dangles (book missing from the catalog)
func decideReturn(s state, userID core.UserIDString, isbn core.ISBNString, now time.Time) core.DecisionResult {
	if !s.userExists {
		return returningFailed(userID, isbn, failureReasonUserNotRegistered, core.ErrUserNotFound, now)
	}

	if !s.userHasBorrowed {
		return returningFailed(userID, isbn, failureReasonBookNotBorrowed, core.ErrLoanNotFound, now)
	}

	if !s.bookExists {
		return returningFailed(userID, isbn, failureReasonBookNotInCatalog, core.ErrBookNotFound, now)
	}

	return core.SuccessDecision(core.BuildBookReturnedByUser(isbn, userID, now))
}

func lendingFailed(
	userID core.UserIDString,
	isbn core.ISBNString,
	reason string,
	sentinel error,
	now time.Time,
) core.DecisionResult {

	event := core.BuildLendingBookFailed(isbn, userID, reason, now)

	return core.ErrorDecision(event, fmt.Errorf("%s: %s: %w", event.EventType, reason, sentinel))
}

func returningFailed(
	userID core.UserIDString,
	isbn core.ISBNString,
	reason string,
	sentinel error,
	now time.Time,
) core.DecisionResult {

	event := core.BuildReturningBookFailed(isbn, userID, reason, now)

	return core.ErrorDecision(event, fmt.Errorf("%s: %s: %w", event.EventType, reason, sentinel))
}
