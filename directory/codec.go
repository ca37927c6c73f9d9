package directory

import (
	"errors"
	"fmt"
	"slices"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending-go/core"
)

const documentVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrCorruptDocument            = errors.New("directory document is corrupt")
	ErrUnsupportedDocumentVersion = errors.New("unsupported directory document version")
)

type userRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Borrowed []string `json:"borrowed"`
}

type directoryDocument struct {
	Version int          `json:"version"`
	Users   []userRecord `json:"users"`
}

func encodeUsers(users []core.User) ([]byte, error) {
	doc := directoryDocument{
		Version: documentVersion,
		Users:   make([]userRecord, 0, len(users)),
	}

	for _, user := range users {
		borrowed := slices.Clone(user.Borrowed)
		if borrowed == nil {
			borrowed = []string{}
		}

		doc.Users = append(doc.Users, userRecord{
			ID:       user.ID,
			Name:     user.Name,
			Borrowed: borrowed,
		})
	}

	return json.Marshal(doc)
}

// decodeUsers rejects the whole document if any record lacks an ID or repeats one.
// A repeated ISBN inside one borrowed set is collapsed to its first occurrence.
func decodeUsers(payload []byte) ([]core.User, error) {
	var doc directoryDocument

	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Join(ErrCorruptDocument, err)
	}

	if doc.Version != documentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDocumentVersion, doc.Version)
	}

	users := make([]core.User, 0, len(doc.Users))
	seen := make(map[core.UserIDString]struct{}, len(doc.Users))

	for i, record := range doc.Users {
		if record.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorruptDocument, i)
		}

		if _, dup := seen[record.ID]; dup {
			return nil, fmt.Errorf("%w: user id %q appears twice", ErrCorruptDocument, record.ID)
		}

		seen[record.ID] = struct{}{}

		borrowed := make([]core.ISBNString, 0, len(record.Borrowed))
		for _, isbn := range record.Borrowed {
			if isbn == "" {
				return nil, fmt.Errorf("%w: user %q has borrowed a book without isbn", ErrCorruptDocument, record.ID)
			}

			if !slices.Contains(borrowed, isbn) {
				borrowed = append(borrowed, isbn)
			}
		}

		users = append(users, core.User{
			ID:       record.ID,
			Name:     record.Name,
			Borrowed: borrowed,
		})
	}

	return users, nil
}
