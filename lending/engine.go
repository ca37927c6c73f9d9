package lending

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-lending-go/core"
)

var (
	ErrNilCatalog   = errors.New("catalog must not be nil")
	ErrNilDirectory = errors.New("directory must not be nil")

	// ErrPartialCommit is returned together with core.ErrStorageUnwritable when the catalog was
	// saved but the directory was not. The persisted collections disagree until the next successful save.
	ErrPartialCommit = errors.New("partial commit: catalog saved, directory not saved")
)

// BookCatalog defines what the Engine needs from the book catalog.
type BookCatalog interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	Add(book core.Book) error
	Find(isbn core.ISBNString) (core.Book, error)
	Exists(isbn core.ISBNString) bool
	SetLoanState(isbn core.ISBNString, onLoan bool) error
	ListAll() []core.Book
	Search(query string) []core.Book
}

// UserDirectory defines what the Engine needs from the user directory.
type UserDirectory interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	Add(user core.User) error
	Find(id core.UserIDString) (core.User, error)
	AttachLoan(id core.UserIDString, isbn core.ISBNString) error
	DetachLoan(id core.UserIDString, isbn core.ISBNString) error
	LoansOf(id core.UserIDString) ([]core.ISBNString, error)
	ListAll() []core.User
	VerifyReferences(exists func(isbn core.ISBNString) bool) []core.DanglingLoan
}

// StartupReport describes what Open found in storage.
type StartupReport struct {
	Books         int
	Users         int
	LoadWarnings  []error
	DanglingLoans []core.DanglingLoan
	Reconciled    []core.ISBNString
}

// Engine performs borrow and return transactions across the catalog and the directory.
type Engine struct {
	mu               sync.Mutex
	catalog          BookCatalog
	directory        UserDirectory
	clock            func() time.Time
	reconcileOnOpen  bool
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewEngine creates an Engine over the catalog and the directory. Call Open before the first operation.
func NewEngine(catalog BookCatalog, directory UserDirectory, options ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	if directory == nil {
		return nil, ErrNilDirectory
	}

	e := &Engine{
		catalog:   catalog,
		directory: directory,
		clock:     time.Now,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Open loads the catalog, then the directory, and verifies the directory's references against the catalog.
//
// Unreadable storage never fails Open, the affected collection starts empty and the problem is listed
// in StartupReport.LoadWarnings. Dangling loans are logged and reported, never dropped.
// The returned error is non-nil only if WithReconcileOnOpen is set and saving the reconciled catalog fails.
func (e *Engine) Open(ctx context.Context) (report StartupReport, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := e.startOperation(ctx, operationOpen)
	defer func() { e.finish(op, nil, err) }()

	if loadErr := e.catalog.Load(op.ctx); loadErr != nil {
		report.LoadWarnings = append(report.LoadWarnings, loadErr)
	}

	if loadErr := e.directory.Load(op.ctx); loadErr != nil {
		report.LoadWarnings = append(report.LoadWarnings, loadErr)
	}

	report.DanglingLoans = e.directory.VerifyReferences(e.catalog.Exists)
	if len(report.DanglingLoans) > 0 {
		e.logWarn(op.ctx, logMsgDanglingLoans, logAttrCount, len(report.DanglingLoans))
	}

	if e.reconcileOnOpen {
		report.Reconciled, err = e.reconcile(op.ctx)
	}

	report.Books = len(e.catalog.ListAll())
	report.Users = len(e.directory.ListAll())

	return report, err
}

// AddBook adds a new, available book to the catalog and saves the catalog.
// Returns core.ErrDuplicateKey if the ISBN exists.
func (e *Engine) AddBook(ctx context.Context, book core.Book) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := e.startOperation(ctx, operationAddBook, logAttrISBN, book.ISBN)
	defer func() { e.finish(op, nil, err) }()

	newBook, err := core.BuildBook(book.ISBN, book.Title, book.Author, book.Category)
	if err != nil {
		return err
	}

	if err = e.catalog.Add(newBook); err != nil {
		return err
	}

	return e.catalog.Save(op.ctx)
}

// RegisterUser adds a new user without loans to the directory and saves the directory.
// Returns core.ErrDuplicateKey if the ID is registered.
func (e *Engine) RegisterUser(ctx context.Context, user core.User) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := e.startOperation(ctx, operationRegisterUser, logAttrUserID, user.ID)
	defer func() { e.finish(op, nil, err) }()

	newUser, err := core.BuildUser(user.ID, user.Name)
	if err != nil {
		return err
	}

	if err = e.directory.Add(newUser); err != nil {
		return err
	}

	return e.directory.Save(op.ctx)
}

// Borrow lends the book to the user. Surrounding whitespace of both keys is ignored, like BuildBook and BuildUser do.
//
// Returns core.ErrUserNotFound, core.ErrBookNotFound or core.ErrBookUnavailable without changing anything,
// the first failing check wins. A storage failure wraps core.ErrStorageUnwritable.
func (e *Engine) Borrow(ctx context.Context, userID core.UserIDString, isbn core.ISBNString) error {
	userID, isbn = strings.TrimSpace(userID), strings.TrimSpace(isbn)

	e.mu.Lock()
	defer e.mu.Unlock()

	op := e.startOperation(ctx, operationBorrow, logAttrUserID, userID, logAttrISBN, isbn)
	result := decideBorrow(e.snapshot(userID, isbn), userID, isbn, e.clock())
	err := e.applyAndPersist(op.ctx, result)
	e.finish(op, result.Event, err)

	return err
}

// Return takes the book back from the user.
//
// Returns core.ErrUserNotFound or core.ErrLoanNotFound without changing anything. A borrowed reference
// to a book that is missing from the catalog returns core.ErrBookNotFound and is kept as is.
// A storage failure wraps core.ErrStorageUnwritable.
func (e *Engine) Return(ctx context.Context, userID core.UserIDString, isbn core.ISBNString) error {
	userID, isbn = strings.TrimSpace(userID), strings.TrimSpace(isbn)

	e.mu.Lock()
	defer e.mu.Unlock()

	op := e.startOperation(ctx, operationReturn, logAttrUserID, userID, logAttrISBN, isbn)
	result := decideReturn(e.snapshot(userID, isbn), userID, isbn, e.clock())
	err := e.applyAndPersist(op.ctx, result)
	e.finish(op, result.Event, err)

	return err
}

// Search returns the books whose title, author or category contains the query, ignoring case.
func (e *Engine) Search(query string) []core.Book {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.catalog.Search(query)
}

// ListBooks returns all books in the order they were added.
func (e *Engine) ListBooks() []core.Book {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.catalog.ListAll()
}

// ListLoans returns the ISBNs the user currently borrows, in borrow order.
func (e *Engine) ListLoans(userID core.UserIDString) ([]core.ISBNString, error) {
	userID = strings.TrimSpace(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.directory.LoansOf(userID)
}

// LoanedBooks returns the books the user currently borrows. Dangling references are skipped.
func (e *Engine) LoanedBooks(userID core.UserIDString) ([]core.Book, error) {
	userID = strings.TrimSpace(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	isbns, err := e.directory.LoansOf(userID)
	if err != nil {
		return nil, err
	}

	books := make([]core.Book, 0, len(isbns))
	for _, isbn := range isbns {
		book, findErr := e.catalog.Find(isbn)
		if findErr != nil {
			continue
		}

		books = append(books, book)
	}

	return books, nil
}

// Audit checks the cross-collection invariants and returns every violation found.
//
// Dangling loans come first in the order they appear in the directory, followed by the
// on-loan flag violations in catalog order. An empty result means both collections agree.
func (e *Engine) Audit() []core.Inconsistency {
	e.mu.Lock()
	defer e.mu.Unlock()

	borrowers, danglingOrder := e.borrowersByISBN()
	inconsistencies := make([]core.Inconsistency, 0)

	for _, isbn := range danglingOrder {
		inconsistencies = append(inconsistencies, core.Inconsistency{
			Kind:    core.DanglingLoanKind,
			ISBN:    isbn,
			UserIDs: borrowers[isbn],
		})
	}

	for _, book := range e.catalog.ListAll() {
		holders := borrowers[book.ISBN]

		switch {
		case book.OnLoan && len(holders) == 0:
			inconsistencies = append(inconsistencies, core.Inconsistency{
				Kind:    core.OnLoanWithoutBorrowerKind,
				ISBN:    book.ISBN,
				UserIDs: []core.UserIDString{},
			})
		case !book.OnLoan && len(holders) > 0:
			inconsistencies = append(inconsistencies, core.Inconsistency{
				Kind:    core.BorrowedButAvailableKind,
				ISBN:    book.ISBN,
				UserIDs: holders,
			})
		}

		if len(holders) > 1 {
			inconsistencies = append(inconsistencies, core.Inconsistency{
				Kind:    core.MultipleBorrowersKind,
				ISBN:    book.ISBN,
				UserIDs: holders,
			})
		}
	}

	return inconsistencies
}

// borrowersByISBN maps every borrowed ISBN to its borrowers in directory order. It also returns
// the ISBNs missing from the catalog in order of first appearance.
func (e *Engine) borrowersByISBN() (map[core.ISBNString][]core.UserIDString, []core.ISBNString) {
	borrowers := make(map[core.ISBNString][]core.UserIDString)
	dangling := make([]core.ISBNString, 0)

	for _, user := range e.directory.ListAll() {
		for _, isbn := range user.Borrowed {
			if !e.catalog.Exists(isbn) && !slices.Contains(dangling, isbn) {
				dangling = append(dangling, isbn)
			}

			borrowers[isbn] = append(borrowers[isbn], user.ID)
		}
	}

	return borrowers, dangling
}

// reconcile sets each book's on-loan flag to whether any user has borrowed it and saves the catalog if needed.
func (e *Engine) reconcile(ctx context.Context) ([]core.ISBNString, error) {
	borrowers, _ := e.borrowersByISBN()
	changed := make([]core.ISBNString, 0)

	for _, book := range e.catalog.ListAll() {
		onLoan := len(borrowers[book.ISBN]) > 0
		if book.OnLoan == onLoan {
			continue
		}

		if err := e.catalog.SetLoanState(book.ISBN, onLoan); err != nil {
			return changed, err
		}

		changed = append(changed, book.ISBN)
	}

	if len(changed) == 0 {
		return changed, nil
	}

	e.logWarn(ctx, logMsgReconciled, logAttrCount, len(changed))

	return changed, e.catalog.Save(ctx)
}

func (e *Engine) snapshot(userID core.UserIDString, isbn core.ISBNString) state {
	var s state

	if user, err := e.directory.Find(userID); err == nil {
		s.userExists = true
		s.userHasBorrowed = user.HasBorrowed(isbn)
	}

	if book, err := e.catalog.Find(isbn); err == nil {
		s.bookExists = true
		s.bookOnLoan = book.OnLoan
	}

	return s
}

// applyAndPersist applies a successful decision to both stores and saves them, catalog first.
func (e *Engine) applyAndPersist(ctx context.Context, result core.DecisionResult) error {
	if err := result.HasError(); err != nil {
		return err
	}

	if err := e.apply(result.Event); err != nil {
		return err
	}

	return e.persist(ctx)
}

func (e *Engine) apply(event core.DomainEvent) error {
	switch ev := event.(type) {
	case core.BookLentToUser:
		if err := e.catalog.SetLoanState(ev.ISBN, true); err != nil {
			return err
		}

		return e.directory.AttachLoan(ev.UserID, ev.ISBN)

	case core.BookReturnedByUser:
		if err := e.catalog.SetLoanState(ev.ISBN, false); err != nil {
			return err
		}

		return e.directory.DetachLoan(ev.UserID, ev.ISBN)
	}

	return nil
}

func (e *Engine) persist(ctx context.Context) error {
	if err := e.catalog.Save(ctx); err != nil {
		return err
	}

	if err := e.directory.Save(ctx); err != nil {
		e.logError(ctx, logMsgPartialCommit, logAttrError, err.Error())
		return errors.Join(ErrPartialCommit, err)
	}

	return nil
}
