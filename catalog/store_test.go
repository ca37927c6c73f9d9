package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-go/catalog"
	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/recordstore/filestore"
	"github.com/AntonStoeckl/library-lending-go/testutil/testdoubles"
)

func buildBook(t *testing.T, isbn, title, author, category string) core.Book {
	t.Helper()

	book, err := core.BuildBook(isbn, title, author, category)
	require.NoError(t, err)

	return book
}

func Test_NewStore_RejectsNilStorage(t *testing.T) {
	_, err := catalog.NewStore(nil)

	assert.ErrorIs(t, err, catalog.ErrNilDocumentStore)
}

func Test_Add_RejectsDuplicateISBN(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)
	original := buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")
	require.NoError(t, store.Add(original))

	err = store.Add(buildBook(t, "ISBN-001", "Other", "Someone", "Drama"))

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	found, findErr := store.Find("ISBN-001")
	require.NoError(t, findErr)
	assert.Equal(t, original, found)
	assert.Equal(t, 1, store.Len())
}

func Test_Add_RejectsEmptyISBN(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Add(core.Book{Title: "Nameless"}), core.ErrEmptyKey)
}

func Test_Find_ReturnsBookNotFound(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)

	_, err = store.Find("ISBN-404")

	assert.ErrorIs(t, err, core.ErrBookNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func Test_SetLoanState(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)
	require.NoError(t, store.Add(buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")))

	require.NoError(t, store.SetLoanState("ISBN-001", true))
	book, err := store.Find("ISBN-001")
	require.NoError(t, err)
	assert.True(t, book.OnLoan)

	assert.ErrorIs(t, store.SetLoanState("ISBN-404", true), core.ErrBookNotFound)
}

func Test_ListAll_KeepsInsertionOrder(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)

	for _, isbn := range []string{"C", "A", "B"} {
		require.NoError(t, store.Add(buildBook(t, isbn, "T-"+isbn, "Author", "Cat")))
	}

	books := store.ListAll()
	require.Len(t, books, 3)
	assert.Equal(t, "C", books[0].ISBN)
	assert.Equal(t, "A", books[1].ISBN)
	assert.Equal(t, "B", books[2].ISBN)

	books[0].Title = "changed"
	unchanged, err := store.Find("C")
	require.NoError(t, err)
	assert.Equal(t, "T-C", unchanged.Title)
}

func Test_Search(t *testing.T) {
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)
	require.NoError(t, store.Add(buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")))
	require.NoError(t, store.Add(buildBook(t, "ISBN-002", "Emma", "Austen", "Romance")))
	require.NoError(t, store.Add(buildBook(t, "ISBN-003", "Children of Dune", "Herbert", "SciFi")))

	t.Run("matches title case-insensitively in insertion order", func(t *testing.T) {
		found := store.Search("dUNE")
		require.Len(t, found, 2)
		assert.Equal(t, "ISBN-001", found[0].ISBN)
		assert.Equal(t, "ISBN-003", found[1].ISBN)
	})

	t.Run("matches author", func(t *testing.T) {
		found := store.Search("austen")
		require.Len(t, found, 1)
		assert.Equal(t, "ISBN-002", found[0].ISBN)
	})

	t.Run("matches category", func(t *testing.T) {
		assert.Len(t, store.Search("scifi"), 2)
	})

	t.Run("returns empty without match", func(t *testing.T) {
		found := store.Search("nomatch")
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Len(t, store.Search(""), 3)
	})
}

func Test_SaveThenLoad_YieldsEqualCatalog(t *testing.T) {
	ctx := context.Background()
	fileEngine, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	store, err := catalog.NewStore(fileEngine)
	require.NoError(t, err)
	require.NoError(t, store.Add(buildBook(t, "ISBN-002", "Emma", "Austen", "Romance")))
	require.NoError(t, store.Add(buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")))
	require.NoError(t, store.SetLoanState("ISBN-001", true))
	require.NoError(t, store.Save(ctx))

	reloaded, err := catalog.NewStore(fileEngine)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, store.ListAll(), reloaded.ListAll())
}

func Test_Load_AbsentStorage_StartsEmpty(t *testing.T) {
	logHandler := testdoubles.NewLogHandlerSpy(false)
	store, err := catalog.NewStore(testdoubles.NewDocumentStoreSpy(), catalog.WithLogger(logHandler.Logger()))
	require.NoError(t, err)

	err = store.Load(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.True(t, logHandler.HasLog(slog.LevelWarn, "catalog storage absent, starting with an empty catalog"))
}

func Test_Load_CorruptStorage_StartsEmptyButUsable(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "invalid json", payload: `{"version":1,"books":[`},
		{name: "wrong shape", payload: `{"version":1,"books":{"isbn":"x"}}`},
		{name: "unknown version", payload: `{"version":7,"books":[]}`},
		{name: "duplicate isbn", payload: `{"version":1,"books":[{"isbn":"A"},{"isbn":"A"}]}`},
		{name: "empty isbn", payload: `{"version":1,"books":[{"isbn":""}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			storage := testdoubles.NewDocumentStoreSpy()
			storage.Seed("books", []byte(tc.payload))
			logHandler := testdoubles.NewLogHandlerSpy(false)
			store, err := catalog.NewStore(storage, catalog.WithLogger(logHandler.Logger()))
			require.NoError(t, err)

			err = store.Load(context.Background())

			assert.ErrorIs(t, err, core.ErrStorageUnreadable)
			assert.Equal(t, 0, store.Len())
			assert.True(t, logHandler.HasLog(slog.LevelWarn, "catalog storage unreadable, starting with an empty catalog"))
			assert.NoError(t, store.Add(buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")))
		})
	}
}

func Test_Load_ReplacesInMemoryState(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	storage.Seed("books", []byte(`{"version":1,"books":[{"isbn":"ISBN-001","title":"Dune","on_loan":true}]}`))
	store, err := catalog.NewStore(storage)
	require.NoError(t, err)
	require.NoError(t, store.Add(buildBook(t, "ISBN-999", "Gone", "Nobody", "None")))

	require.NoError(t, store.Load(context.Background()))

	assert.False(t, store.Exists("ISBN-999"))
	book, err := store.Find("ISBN-001")
	require.NoError(t, err)
	assert.True(t, book.OnLoan)
}

func Test_Save_FailureWrapsStorageUnwritable(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	diskFull := errors.New("disk full")
	storage.FailSavesOf("books", diskFull)
	store, err := catalog.NewStore(storage)
	require.NoError(t, err)
	require.NoError(t, store.Add(buildBook(t, "ISBN-001", "Dune", "Herbert", "SciFi")))

	err = store.Save(context.Background())

	assert.ErrorIs(t, err, core.ErrStorageUnwritable)
	assert.ErrorIs(t, err, diskFull)
	assert.True(t, store.Exists("ISBN-001"))
}

func Test_WithCollectionName(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	store, err := catalog.NewStore(storage, catalog.WithCollectionName("archive_books"))
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background()))
	assert.Equal(t, 1, storage.SaveCount("archive_books"))

	_, err = catalog.NewStore(storage, catalog.WithCollectionName("../etc"))
	assert.Error(t, err)
}
