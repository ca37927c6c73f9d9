package core

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	bookStatusAvailable = "available"
	bookStatusOnLoan    = "on loan"
)

// Book is a catalog record. The catalog is its sole owner.
type Book struct {
	ISBN     ISBNString
	Title    string
	Author   string
	Category string
	OnLoan   bool
}

// BuildBook creates a new Book which is available for lending.
// Returns ErrEmptyKey if the ISBN is blank.
func BuildBook(isbn ISBNString, title string, author string, category string) (Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Book{}, ErrEmptyKey
	}

	return Book{
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		Category: category,
	}, nil
}

// Matches reports whether the query is a case-insensitive substring of the title, author or category.
// An empty query matches every book.
func (b Book) Matches(query string) bool {
	caser := cases.Fold()
	needle := caser.String(query)

	for _, field := range []string{b.Title, b.Author, b.Category} {
		if strings.Contains(caser.String(field), needle) {
			return true
		}
	}

	return false
}

// Status returns a human-readable loan status.
func (b Book) Status() string {
	if b.OnLoan {
		return bookStatusOnLoan
	}

	return bookStatusAvailable
}
