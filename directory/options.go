package directory

import (
	"github.com/AntonStoeckl/library-lending-go/recordstore"
)

const defaultCollectionName = "users"

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithCollectionName sets the name of the document the directory is persisted as.
func WithCollectionName(name string) Option {
	return func(s *Store) error {
		if err := recordstore.ValidateCollectionName(name); err != nil {
			return err
		}

		s.collection = name

		return nil
	}
}

// WithLogger sets the logger for the Store.
func WithLogger(logger recordstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}
