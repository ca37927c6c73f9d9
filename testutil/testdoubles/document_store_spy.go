package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

// DocumentStoreSpy is an in-memory DocumentStore with injectable failures.
// Payloads are stored without validation, so tests can seed corrupt documents.
type DocumentStoreSpy struct {
	documents  map[string][]byte
	saveCounts map[string]int
	saveErrors map[string]error
	loadErrors map[string]error
	mu         sync.Mutex
}

// NewDocumentStoreSpy creates an empty DocumentStoreSpy.
func NewDocumentStoreSpy() *DocumentStoreSpy {
	return &DocumentStoreSpy{
		documents:  make(map[string][]byte),
		saveCounts: make(map[string]int),
		saveErrors: make(map[string]error),
		loadErrors: make(map[string]error),
	}
}

// Load implements the DocumentStore interface.
func (s *DocumentStoreSpy) Load(ctx context.Context, collection string) (recordstore.StorableDocument, error) {
	if err := ctx.Err(); err != nil {
		return recordstore.StorableDocument{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadErrors[collection]; err != nil {
		return recordstore.StorableDocument{}, err
	}

	payload, ok := s.documents[collection]
	if !ok {
		return recordstore.StorableDocument{}, recordstore.ErrDocumentNotFound
	}

	return recordstore.StorableDocument{
		Collection:  collection,
		PayloadJSON: append([]byte(nil), payload...),
	}, nil
}

// Save implements the DocumentStore interface.
func (s *DocumentStoreSpy) Save(ctx context.Context, document recordstore.StorableDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveErrors[document.Collection]; err != nil {
		return err
	}

	s.documents[document.Collection] = append([]byte(nil), document.PayloadJSON...)
	s.saveCounts[document.Collection]++

	return nil
}

// Seed stores the raw payload for the collection without counting it as a save.
func (s *DocumentStoreSpy) Seed(collection string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[collection] = append([]byte(nil), payload...)
}

// Payload returns the currently stored payload of the collection.
func (s *DocumentStoreSpy) Payload(collection string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.documents[collection]

	return append([]byte(nil), payload...), ok
}

// FailSavesOf makes every following Save of the collection fail with err. A nil err removes the failure.
func (s *DocumentStoreSpy) FailSavesOf(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveErrors[collection] = err
}

// FailLoadsOf makes every following Load of the collection fail with err. A nil err removes the failure.
func (s *DocumentStoreSpy) FailLoadsOf(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadErrors[collection] = err
}

// SaveCount returns how often the collection was saved successfully.
func (s *DocumentStoreSpy) SaveCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveCounts[collection]
}

// Compile-time check to ensure DocumentStoreSpy implements DocumentStore interface.
var _ recordstore.DocumentStore = (*DocumentStoreSpy)(nil)
