package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-go/core"
)

func Test_BuildBook_RejectsEmptyISBN(t *testing.T) {
	_, err := core.BuildBook("  ", "Dune", "Herbert", "SciFi")

	assert.ErrorIs(t, err, core.ErrEmptyKey)
}

func Test_BuildBook_IsAvailable(t *testing.T) {
	book, err := core.BuildBook(" ISBN-001 ", "Dune", "Herbert", "SciFi")

	require.NoError(t, err)
	assert.Equal(t, "ISBN-001", book.ISBN)
	assert.False(t, book.OnLoan)
	assert.Equal(t, "available", book.Status())
}

func Test_Book_Matches(t *testing.T) {
	book, err := core.BuildBook("ISBN-001", "Dune", "Frank Herbert", "SciFi")
	require.NoError(t, err)

	testCases := []struct {
		query   string
		matches bool
	}{
		{query: "dune", matches: true},
		{query: "DUNE", matches: true},
		{query: "herb", matches: true},
		{query: "scifi", matches: true},
		{query: "", matches: true},
		{query: "nomatch", matches: false},
		{query: "ISBN-001", matches: false},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.matches, book.Matches(tc.query))
		})
	}
}

func Test_Book_Matches_FoldsUnicode(t *testing.T) {
	book, err := core.BuildBook("ISBN-002", "Die Straße", "Ünal", "Roman")
	require.NoError(t, err)

	assert.True(t, book.Matches("STRASSE"))
	assert.True(t, book.Matches("ünal"))
}
