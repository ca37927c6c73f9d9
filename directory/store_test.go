package directory_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/directory"
	"github.com/AntonStoeckl/library-lending-go/recordstore/filestore"
	"github.com/AntonStoeckl/library-lending-go/testutil/testdoubles"
)

func newStoreWithUser(t *testing.T, id, name string) *directory.Store {
	t.Helper()

	store, err := directory.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)

	user, err := core.BuildUser(id, name)
	require.NoError(t, err)
	require.NoError(t, store.Add(user))

	return store
}

func Test_Add_RejectsDuplicateID(t *testing.T) {
	store := newStoreWithUser(t, "U1", "Ana")

	err := store.Add(core.User{ID: "U1", Name: "Someone else"})

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	user, findErr := store.Find("U1")
	require.NoError(t, findErr)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, 1, store.Len())
}

func Test_Add_RejectsEmptyID(t *testing.T) {
	store, err := directory.NewStore(testdoubles.NewDocumentStoreSpy())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Add(core.User{Name: "Anonymous"}), core.ErrEmptyKey)
}

func Test_Find_ReturnsUserNotFound(t *testing.T) {
	store := newStoreWithUser(t, "U1", "Ana")

	_, err := store.Find("U2")

	assert.ErrorIs(t, err, core.ErrUserNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NotErrorIs(t, err, core.ErrBookNotFound)
}

func Test_AttachAndDetachLoan(t *testing.T) {
	store := newStoreWithUser(t, "U1", "Ana")

	require.NoError(t, store.AttachLoan("U1", "ISBN-002"))
	require.NoError(t, store.AttachLoan("U1", "ISBN-001"))
	require.NoError(t, store.AttachLoan("U1", "ISBN-002"))

	loans, err := store.LoansOf("U1")
	require.NoError(t, err)
	assert.Equal(t, []core.ISBNString{"ISBN-002", "ISBN-001"}, loans)

	require.NoError(t, store.DetachLoan("U1", "ISBN-002"))
	require.NoError(t, store.DetachLoan("U1", "ISBN-404"))

	loans, err = store.LoansOf("U1")
	require.NoError(t, err)
	assert.Equal(t, []core.ISBNString{"ISBN-001"}, loans)

	assert.ErrorIs(t, store.AttachLoan("U9", "ISBN-001"), core.ErrUserNotFound)
	assert.ErrorIs(t, store.DetachLoan("U9", "ISBN-001"), core.ErrUserNotFound)
	_, err = store.LoansOf("U9")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func Test_Find_ReturnsIsolatedCopy(t *testing.T) {
	store := newStoreWithUser(t, "U1", "Ana")
	require.NoError(t, store.AttachLoan("U1", "ISBN-001"))

	user, err := store.Find("U1")
	require.NoError(t, err)
	user.Borrowed[0] = "tampered"

	loans, err := store.LoansOf("U1")
	require.NoError(t, err)
	assert.Equal(t, []core.ISBNString{"ISBN-001"}, loans)
}

func Test_VerifyReferences_RecordsButKeepsDanglingLoans(t *testing.T) {
	logHandler := testdoubles.NewLogHandlerSpy(false)
	store, err := directory.NewStore(testdoubles.NewDocumentStoreSpy(), directory.WithLogger(logHandler.Logger()))
	require.NoError(t, err)
	require.NoError(t, store.Add(core.User{ID: "U1", Name: "Ana"}))
	require.NoError(t, store.Add(core.User{ID: "U2", Name: "Ben"}))
	require.NoError(t, store.AttachLoan("U1", "ISBN-001"))
	require.NoError(t, store.AttachLoan("U1", "ISBN-GONE"))
	require.NoError(t, store.AttachLoan("U2", "ISBN-LOST"))

	inCatalog := func(isbn core.ISBNString) bool { return isbn == "ISBN-001" }

	dangling := store.VerifyReferences(inCatalog)

	assert.Equal(t, []core.DanglingLoan{
		{UserID: "U1", ISBN: "ISBN-GONE"},
		{UserID: "U2", ISBN: "ISBN-LOST"},
	}, dangling)
	assert.Equal(t, dangling, store.Dangling())

	loans, err := store.LoansOf("U1")
	require.NoError(t, err)
	assert.Equal(t, []core.ISBNString{"ISBN-001", "ISBN-GONE"}, loans)
	assert.True(t, logHandler.HasLogWithAttr("borrowed book is missing from the catalog", "isbn", "ISBN-LOST"))
}

func Test_SaveThenLoad_YieldsEqualDirectory(t *testing.T) {
	ctx := context.Background()
	fileEngine, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	store, err := directory.NewStore(fileEngine)
	require.NoError(t, err)
	require.NoError(t, store.Add(core.User{ID: "U2", Name: "Ben"}))
	require.NoError(t, store.Add(core.User{ID: "U1", Name: "Ana"}))
	require.NoError(t, store.AttachLoan("U1", "ISBN-003"))
	require.NoError(t, store.AttachLoan("U1", "ISBN-001"))
	require.NoError(t, store.Save(ctx))

	reloaded, err := directory.NewStore(fileEngine)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, store.ListAll(), reloaded.ListAll())
}

func Test_Load_AbsentStorage_StartsEmpty(t *testing.T) {
	logHandler := testdoubles.NewLogHandlerSpy(false)
	store, err := directory.NewStore(testdoubles.NewDocumentStoreSpy(), directory.WithLogger(logHandler.Logger()))
	require.NoError(t, err)

	assert.NoError(t, store.Load(context.Background()))
	assert.Equal(t, 0, store.Len())
	assert.True(t, logHandler.HasLog(slog.LevelWarn, "directory storage absent, starting with an empty directory"))
}

func Test_Load_CorruptStorage_StartsEmptyButUsable(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "invalid json", payload: `not json`},
		{name: "missing version", payload: `{"users":[]}`},
		{name: "duplicate id", payload: `{"version":1,"users":[{"id":"U1"},{"id":"U1"}]}`},
		{name: "empty id", payload: `{"version":1,"users":[{"name":"Ana"}]}`},
		{name: "empty borrowed isbn", payload: `{"version":1,"users":[{"id":"U1","borrowed":["B",""]}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			storage := testdoubles.NewDocumentStoreSpy()
			storage.Seed("users", []byte(tc.payload))
			store, err := directory.NewStore(storage)
			require.NoError(t, err)

			err = store.Load(context.Background())

			assert.ErrorIs(t, err, core.ErrStorageUnreadable)
			assert.Equal(t, 0, store.Len())
			assert.NoError(t, store.Add(core.User{ID: "U1", Name: "Ana"}))
		})
	}
}

func Test_Load_CollapsesRepeatedBorrowedISBN(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	storage.Seed("users", []byte(`{"version":1,"users":[{"id":"U1","name":"Ana","borrowed":["B","A","B"]}]}`))
	store, err := directory.NewStore(storage)
	require.NoError(t, err)

	require.NoError(t, store.Load(context.Background()))

	loans, err := store.LoansOf("U1")
	require.NoError(t, err)
	assert.Equal(t, []core.ISBNString{"B", "A"}, loans)
}

func Test_Load_FailingStorage(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	permissionDenied := errors.New("permission denied")
	storage.FailLoadsOf("users", permissionDenied)
	store, err := directory.NewStore(storage)
	require.NoError(t, err)

	err = store.Load(context.Background())

	assert.ErrorIs(t, err, core.ErrStorageUnreadable)
	assert.ErrorIs(t, err, permissionDenied)
}

func Test_Save_FailureWrapsStorageUnwritable(t *testing.T) {
	storage := testdoubles.NewDocumentStoreSpy()
	storage.FailSavesOf("users", errors.New("read-only file system"))
	store, err := directory.NewStore(storage)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save(context.Background()), core.ErrStorageUnwritable)
}
