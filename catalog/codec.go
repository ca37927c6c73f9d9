package catalog

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending-go/core"
)

const documentVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrCorruptDocument            = errors.New("catalog document is corrupt")
	ErrUnsupportedDocumentVersion = errors.New("unsupported catalog document version")
)

type bookRecord struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	OnLoan   bool   `json:"on_loan"`
}

type catalogDocument struct {
	Version int          `json:"version"`
	Books   []bookRecord `json:"books"`
}

func encodeBooks(books []core.Book) ([]byte, error) {
	doc := catalogDocument{
		Version: documentVersion,
		Books:   make([]bookRecord, 0, len(books)),
	}

	for _, book := range books {
		doc.Books = append(doc.Books, bookRecord{
			ISBN:     book.ISBN,
			Title:    book.Title,
			Author:   book.Author,
			Category: book.Category,
			OnLoan:   book.OnLoan,
		})
	}

	return json.Marshal(doc)
}

// decodeBooks rejects the whole document if any record lacks an ISBN or repeats one.
func decodeBooks(payload []byte) ([]core.Book, error) {
	var doc catalogDocument

	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Join(ErrCorruptDocument, err)
	}

	if doc.Version != documentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDocumentVersion, doc.Version)
	}

	books := make([]core.Book, 0, len(doc.Books))
	seen := make(map[core.ISBNString]struct{}, len(doc.Books))

	for i, record := range doc.Books {
		if record.ISBN == "" {
			return nil, fmt.Errorf("%w: record %d has no isbn", ErrCorruptDocument, i)
		}

		if _, dup := seen[record.ISBN]; dup {
			return nil, fmt.Errorf("%w: isbn %q appears twice", ErrCorruptDocument, record.ISBN)
		}

		seen[record.ISBN] = struct{}{}
		books = append(books, core.Book{
			ISBN:     record.ISBN,
			Title:    record.Title,
			Author:   record.Author,
			Category: record.Category,
			OnLoan:   record.OnLoan,
		})
	}

	return books, nil
}
