package core

import (
	"slices"
	"strings"
)

// User is a directory record.
//
// Borrowed holds ISBN references into the catalog in borrow order. It never holds Book data;
// the ISBNs are lookup keys only.
type User struct {
	ID       UserIDString
	Name     string
	Borrowed []ISBNString
}

// BuildUser creates a new User without any borrowed books.
// Returns ErrEmptyKey if the ID is blank.
func BuildUser(id UserIDString, name string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrEmptyKey
	}

	return User{
		ID:       id,
		Name:     name,
		Borrowed: []ISBNString{},
	}, nil
}

// HasBorrowed reports whether the ISBN is in the user's borrowed set.
func (u User) HasBorrowed(isbn ISBNString) bool {
	return slices.Contains(u.Borrowed, isbn)
}

// Clone returns a deep copy so that callers can't alter the borrowed set of a stored user.
func (u User) Clone() User {
	clone := u
	clone.Borrowed = slices.Clone(u.Borrowed)

	if clone.Borrowed == nil {
		clone.Borrowed = []ISBNString{}
	}

	return clone
}
