package core

// InconsistencyKind classifies a violation of the cross-collection invariants.
type InconsistencyKind string

const (
	// DanglingLoanKind: a user's borrowed set references an ISBN that is not in the catalog.
	DanglingLoanKind InconsistencyKind = "dangling_loan"

	// OnLoanWithoutBorrowerKind: a book is flagged as on loan but no user has borrowed it.
	OnLoanWithoutBorrowerKind InconsistencyKind = "on_loan_without_borrower"

	// BorrowedButAvailableKind: a user has borrowed a book that is not flagged as on loan.
	BorrowedButAvailableKind InconsistencyKind = "borrowed_but_available"

	// MultipleBorrowersKind: more than one user has borrowed the same book.
	MultipleBorrowersKind InconsistencyKind = "multiple_borrowers"
)

// DanglingLoan is a borrowed reference that points to a book missing from the catalog.
type DanglingLoan struct {
	UserID UserIDString
	ISBN   ISBNString
}

// Inconsistency describes one invariant violation between the catalog and the directory.
type Inconsistency struct {
	Kind    InconsistencyKind
	ISBN    ISBNString
	UserIDs []UserIDString
}
