package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const (
	defaultFileMode        = os.FileMode(0o600)
	defaultDirMode         = os.FileMode(0o750)
	fileExtension          = ".json"
	logMsgDocumentRead     = "document read from file"
	logMsgDocumentWritten  = "document written to file"
	logMsgReadFailed       = "reading document file failed"
	logMsgWriteFailed      = "writing document file failed"
	logMsgTempCleanupError = "failed to remove temporary document file"
	logAttrError           = "error"
	logAttrPath            = "path"
	logAttrBytes           = "bytes"
	logAttrDurationMS      = "duration_ms"
)

var ErrEmptyDirectory = errors.New("empty directory supplied")

// Engine is a recordstore.DocumentStore keeping one JSON file per collection in a directory.
type Engine struct {
	dir      string
	fileMode os.FileMode
	logger   recordstore.Logger
}

// New creates an Engine storing documents in dir, creating the directory if needed.
func New(dir string, options ...Option) (*Engine, error) {
	if dir == "" {
		return nil, ErrEmptyDirectory
	}

	e := &Engine{
		dir:      dir,
		fileMode: defaultFileMode,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return nil, err
	}

	return e, nil
}

// Load reads the document of the collection.
// Returns recordstore.ErrDocumentNotFound if the file does not exist.
func (e *Engine) Load(ctx context.Context, collection string) (recordstore.StorableDocument, error) {
	if err := recordstore.ValidateCollectionName(collection); err != nil {
		return recordstore.StorableDocument{}, err
	}

	if err := ctx.Err(); err != nil {
		return recordstore.StorableDocument{}, errors.Join(recordstore.ErrLoadingDocumentFailed, err)
	}

	path := e.pathFor(collection)
	start := time.Now()

	payload, readErr := os.ReadFile(path)
	if errors.Is(readErr, fs.ErrNotExist) {
		return recordstore.StorableDocument{}, recordstore.ErrDocumentNotFound
	}

	if readErr != nil {
		e.logError(logMsgReadFailed, readErr, logAttrPath, path)
		return recordstore.StorableDocument{}, errors.Join(recordstore.ErrLoadingDocumentFailed, readErr)
	}

	doc, buildErr := recordstore.BuildStorableDocument(collection, payload)
	if buildErr != nil {
		e.logError(logMsgReadFailed, buildErr, logAttrPath, path)
		return recordstore.StorableDocument{}, errors.Join(recordstore.ErrLoadingDocumentFailed, buildErr)
	}

	e.logDebug(logMsgDocumentRead, logAttrPath, path, logAttrBytes, len(payload), logAttrDurationMS, time.Since(start).Milliseconds())

	return doc, nil
}

// Save replaces the document file of the collection atomically.
func (e *Engine) Save(ctx context.Context, document recordstore.StorableDocument) error {
	if err := recordstore.ValidateCollectionName(document.Collection); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.Join(recordstore.ErrSavingDocumentFailed, err)
	}

	path := e.pathFor(document.Collection)
	start := time.Now()

	if err := e.writeAtomically(path, document.PayloadJSON); err != nil {
		e.logError(logMsgWriteFailed, err, logAttrPath, path)
		return errors.Join(recordstore.ErrSavingDocumentFailed, err)
	}

	e.logDebug(logMsgDocumentWritten, logAttrPath, path, logAttrBytes, len(document.PayloadJSON), logAttrDurationMS, time.Since(start).Milliseconds())

	return nil
}

// writeAtomically writes into a temp file next to the target and renames it over the target.
func (e *Engine) writeAtomically(path string, payload []byte) (err error) {
	tmp, err := os.CreateTemp(e.dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	defer func() {
		if err == nil {
			return
		}

		if removeErr := os.Remove(tmpName); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			e.logError(logMsgTempCleanupError, removeErr, logAttrPath, tmpName)
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Chmod(tmpName, e.fileMode); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func (e *Engine) pathFor(collection string) string {
	return filepath.Join(e.dir, collection+fileExtension)
}

func (e *Engine) logDebug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) logError(msg string, err error, args ...any) {
	if e.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		e.logger.Error(msg, allArgs...)
	}
}

// Ensure Engine implements recordstore.DocumentStore.
var _ recordstore.DocumentStore = (*Engine)(nil)
