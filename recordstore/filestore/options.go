package filestore

import (
	"errors"
	"os"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

var ErrInvalidFileMode = errors.New("file mode must grant owner read and write")

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithFileMode sets the permissions of the document files.
func WithFileMode(mode os.FileMode) Option {
	return func(e *Engine) error {
		if mode&0o600 != 0o600 {
			return ErrInvalidFileMode
		}

		e.fileMode = mode

		return nil
	}
}

// WithLogger sets the logger for the Engine.
//
// Debug level: file reads and writes with timing
// Error level: failed reads and writes.
func WithLogger(logger recordstore.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}
