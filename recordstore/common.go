package recordstore

import (
	"errors"
)

var ErrEmptyCollectionName = errors.New("empty collection name supplied")
var ErrInvalidCollectionName = errors.New("collection name may only contain letters, digits, '_' and '-'")
var ErrDocumentNotFound = errors.New("document not found")
var ErrLoadingDocumentFailed = errors.New("loading document failed")
var ErrSavingDocumentFailed = errors.New("saving document failed")
