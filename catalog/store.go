package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	logMsgStorageAbsent     = "catalog storage absent, starting with an empty catalog"
	logMsgStorageUnreadable = "catalog storage unreadable, starting with an empty catalog"
	logMsgLoaded            = "catalog loaded"
	logMsgSaved             = "catalog saved"
	logMsgSaveFailed        = "saving catalog failed"
	logAttrCollection       = "collection"
	logAttrBooks            = "books"
	logAttrError            = "error"
)

var ErrNilDocumentStore = errors.New("document store must not be nil")

// Store holds the Book records keyed by ISBN.
type Store struct {
	storage    recordstore.DocumentStore
	collection string
	books      []core.Book
	index      map[core.ISBNString]int
	logger     recordstore.Logger
}

// NewStore creates an empty Store persisting through storage.
func NewStore(storage recordstore.DocumentStore, options ...Option) (*Store, error) {
	if storage == nil {
		return nil, ErrNilDocumentStore
	}

	s := &Store{
		storage:    storage,
		collection: defaultCollectionName,
	}
	s.reset()

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Load replaces the in-memory catalog with the persisted one.
//
// Absent storage leaves the catalog empty and returns nil. Unreadable or corrupt storage also
// leaves it empty, the returned error wraps core.ErrStorageUnreadable and the Store stays usable.
func (s *Store) Load(ctx context.Context) error {
	s.reset()

	doc, err := s.storage.Load(ctx, s.collection)
	if errors.Is(err, recordstore.ErrDocumentNotFound) {
		s.logWarn(logMsgStorageAbsent, logAttrCollection, s.collection)
		return nil
	}

	if err != nil {
		s.logWarn(logMsgStorageUnreadable, logAttrCollection, s.collection, logAttrError, err.Error())
		return errors.Join(core.ErrStorageUnreadable, err)
	}

	books, err := decodeBooks(doc.PayloadJSON)
	if err != nil {
		s.logWarn(logMsgStorageUnreadable, logAttrCollection, s.collection, logAttrError, err.Error())
		return errors.Join(core.ErrStorageUnreadable, err)
	}

	for _, book := range books {
		s.insert(book)
	}

	s.logInfo(logMsgLoaded, logAttrCollection, s.collection, logAttrBooks, len(s.books))

	return nil
}

// Save persists the whole catalog, replacing the previous document.
// Errors wrap core.ErrStorageUnwritable, the in-memory catalog is kept as is.
func (s *Store) Save(ctx context.Context) error {
	payload, err := encodeBooks(s.books)
	if err != nil {
		return errors.Join(core.ErrStorageUnwritable, err)
	}

	doc, err := recordstore.BuildStorableDocument(s.collection, payload)
	if err != nil {
		return errors.Join(core.ErrStorageUnwritable, err)
	}

	if err = s.storage.Save(ctx, doc); err != nil {
		s.logWarn(logMsgSaveFailed, logAttrCollection, s.collection, logAttrError, err.Error())
		return errors.Join(core.ErrStorageUnwritable, err)
	}

	s.logInfo(logMsgSaved, logAttrCollection, s.collection, logAttrBooks, len(s.books))

	return nil
}

// Add inserts the book. Returns core.ErrDuplicateKey if the ISBN is already present,
// the existing record stays unchanged.
func (s *Store) Add(book core.Book) error {
	if book.ISBN == "" {
		return core.ErrEmptyKey
	}

	if s.Exists(book.ISBN) {
		return fmt.Errorf("%w: isbn %q", core.ErrDuplicateKey, book.ISBN)
	}

	s.insert(book)

	return nil
}

// Find returns the book or core.ErrBookNotFound.
func (s *Store) Find(isbn core.ISBNString) (core.Book, error) {
	i, ok := s.index[isbn]
	if !ok {
		return core.Book{}, fmt.Errorf("%w: isbn %q", core.ErrBookNotFound, isbn)
	}

	return s.books[i], nil
}

// Exists reports whether the ISBN is in the catalog.
func (s *Store) Exists(isbn core.ISBNString) bool {
	_, ok := s.index[isbn]
	return ok
}

// SetLoanState sets the on-loan flag of the book.
func (s *Store) SetLoanState(isbn core.ISBNString, onLoan bool) error {
	i, ok := s.index[isbn]
	if !ok {
		return fmt.Errorf("%w: isbn %q", core.ErrBookNotFound, isbn)
	}

	s.books[i].OnLoan = onLoan

	return nil
}

// ListAll returns all books in insertion order.
func (s *Store) ListAll() []core.Book {
	return slices.Clone(s.books)
}

// Search returns the books whose title, author or category contains the query, ignoring case.
func (s *Store) Search(query string) []core.Book {
	found := make([]core.Book, 0)

	for _, book := range s.books {
		if book.Matches(query) {
			found = append(found, book)
		}
	}

	return found
}

// Len returns the number of books.
func (s *Store) Len() int {
	return len(s.books)
}

func (s *Store) insert(book core.Book) {
	s.index[book.ISBN] = len(s.books)
	s.books = append(s.books, book)
}

func (s *Store) reset() {
	s.books = make([]core.Book, 0)
	s.index = make(map[core.ISBNString]int)
}

func (s *Store) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
