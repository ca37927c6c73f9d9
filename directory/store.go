package directory

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	logMsgStorageAbsent     = "directory storage absent, starting with an empty directory"
	logMsgStorageUnreadable = "directory storage unreadable, starting with an empty directory"
	logMsgLoaded            = "directory loaded"
	logMsgSaved             = "directory saved"
	logMsgSaveFailed        = "saving directory failed"
	logMsgDanglingLoan      = "borrowed book is missing from the catalog"
	logAttrCollection       = "collection"
	logAttrUsers            = "users"
	logAttrUserID           = "user_id"
	logAttrISBN             = "isbn"
	logAttrError            = "error"
)

var ErrNilDocumentStore = errors.New("document store must not be nil")

// Store holds the User records keyed by ID.
type Store struct {
	storage    recordstore.DocumentStore
	collection string
	users      []core.User
	index      map[core.UserIDString]int
	dangling   []core.DanglingLoan
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

// Load replaces the in-memory directory with the persisted one.
//
// Absent storage leaves the directory empty and returns nil. Unreadable or corrupt storage also
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

	users, err := decodeUsers(doc.PayloadJSON)
	if err != nil {
		s.logWarn(logMsgStorageUnreadable, logAttrCollection, s.collection, logAttrError, err.Error())
		return errors.Join(core.ErrStorageUnreadable, err)
	}

	for _, user := range users {
		s.insert(user)
	}

	s.logInfo(logMsgLoaded, logAttrCollection, s.collection, logAttrUsers, len(s.users))

	return nil
}

// Save persists the whole directory, replacing the previous document.
// Errors wrap core.ErrStorageUnwritable, the in-memory directory is kept as is.
func (s *Store) Save(ctx context.Context) error {
	payload, err := encodeUsers(s.users)
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

	s.logInfo(logMsgSaved, logAttrCollection, s.collection, logAttrUsers, len(s.users))

	return nil
}

// VerifyReferences records every borrowed ISBN for which exists returns false as a dangling loan.
// The references themselves are kept. The result replaces what Dangling returned before.
func (s *Store) VerifyReferences(exists func(isbn core.ISBNString) bool) []core.DanglingLoan {
	s.dangling = make([]core.DanglingLoan, 0)

	for _, user := range s.users {
		for _, isbn := range user.Borrowed {
			if exists(isbn) {
				continue
			}

			s.dangling = append(s.dangling, core.DanglingLoan{UserID: user.ID, ISBN: isbn})
			s.logWarn(logMsgDanglingLoan, logAttrUserID, user.ID, logAttrISBN, isbn)
		}
	}

	return s.Dangling()
}

// Dangling returns the dangling loans found by the last VerifyReferences.
func (s *Store) Dangling() []core.DanglingLoan {
	return slices.Clone(s.dangling)
}

// Add inserts the user. Returns core.ErrDuplicateKey if the ID is already registered,
// the existing record stays unchanged.
func (s *Store) Add(user core.User) error {
	if user.ID == "" {
		return core.ErrEmptyKey
	}

	if s.Exists(user.ID) {
		return fmt.Errorf("%w: user id %q", core.ErrDuplicateKey, user.ID)
	}

	s.insert(user.Clone())

	return nil
}

// Find returns a copy of the user or core.ErrUserNotFound.
func (s *Store) Find(id core.UserIDString) (core.User, error) {
	i, ok := s.index[id]
	if !ok {
		return core.User{}, userNotFound(id)
	}

	return s.users[i].Clone(), nil
}

// Exists reports whether the user ID is registered.
func (s *Store) Exists(id core.UserIDString) bool {
	_, ok := s.index[id]
	return ok
}

// AttachLoan adds the ISBN to the user's borrowed set. Attaching an ISBN twice keeps one entry.
func (s *Store) AttachLoan(id core.UserIDString, isbn core.ISBNString) error {
	i, ok := s.index[id]
	if !ok {
		return userNotFound(id)
	}

	if !s.users[i].HasBorrowed(isbn) {
		s.users[i].Borrowed = append(s.users[i].Borrowed, isbn)
	}

	return nil
}

// DetachLoan removes the ISBN from the user's borrowed set. Detaching an absent ISBN is a no-op.
func (s *Store) DetachLoan(id core.UserIDString, isbn core.ISBNString) error {
	i, ok := s.index[id]
	if !ok {
		return userNotFound(id)
	}

	s.users[i].Borrowed = slices.DeleteFunc(s.users[i].Borrowed, func(borrowed core.ISBNString) bool {
		return borrowed == isbn
	})

	return nil
}

// LoansOf returns the ISBNs the user currently borrows, in borrow order.
func (s *Store) LoansOf(id core.UserIDString) ([]core.ISBNString, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, userNotFound(id)
	}

	return s.users[i].Clone().Borrowed, nil
}

// ListAll returns copies of all users in registration order.
func (s *Store) ListAll() []core.User {
	users := make([]core.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}

	return users
}

// Len returns the number of users.
func (s *Store) Len() int {
	return len(s.users)
}

func (s *Store) insert(user core.User) {
	if user.Borrowed == nil {
		user.Borrowed = []core.ISBNString{}
	}

	s.index[user.ID] = len(s.users)
	s.users = append(s.users, user)
}

func (s *Store) reset() {
	s.users = make([]core.User, 0)
	s.index = make(map[core.UserIDString]int)
	s.dangling = make([]core.DanglingLoan, 0)
}

func userNotFound(id core.UserIDString) error {
	return fmt.Errorf("%w: id %q", core.ErrUserNotFound, id)
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
