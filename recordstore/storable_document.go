package recordstore

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")

// StorableDocument is a DTO (data transfer object) used by a DocumentStore to persist one whole collection.
//
// It is built on scalars to be completely agnostic of the records inside the collection.
//
// While its properties are exported, it should only be constructed with BuildStorableDocument.
type StorableDocument struct {
	Collection  string
	PayloadJSON []byte
}

// BuildStorableDocument is a factory method for StorableDocument.
//
// Returns an error if the collection name is empty or contains characters other than
// letters, digits, '_' and '-', or if payloadJSON is not valid JSON.
func BuildStorableDocument(collection string, payloadJSON []byte) (StorableDocument, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return StorableDocument{}, err
	}

	if !json.Valid(payloadJSON) {
		return StorableDocument{}, ErrInvalidPayloadJSON
	}

	return StorableDocument{
		Collection:  collection,
		PayloadJSON: payloadJSON,
	}, nil
}

// ValidateCollectionName checks that a collection name is safe to use as a file name or row key.
func ValidateCollectionName(collection string) error {
	if collection == "" {
		return ErrEmptyCollectionName
	}

	for _, r := range collection {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return ErrInvalidCollectionName
		}
	}

	return nil
}

// DocumentStore persists whole-collection documents.
//
// Load returns ErrDocumentNotFound if nothing was saved for the collection yet.
// Save must replace the previous document atomically from the caller's perspective.
type DocumentStore interface {
	Load(ctx context.Context, collection string) (StorableDocument, error)
	Save(ctx context.Context, document StorableDocument) error
}
