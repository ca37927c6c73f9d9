package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-go/recordstore"
	"github.com/AntonStoeckl/library-lending-go/recordstore/filestore"
)

func Test_New_RejectsEmptyDirectory(t *testing.T) {
	_, err := filestore.New("")

	assert.ErrorIs(t, err, filestore.ErrEmptyDirectory)
}

func Test_New_RejectsUnreadableFileMode(t *testing.T) {
	_, err := filestore.New(t.TempDir(), filestore.WithFileMode(0o200))

	assert.ErrorIs(t, err, filestore.ErrInvalidFileMode)
}

func Test_Load_ReturnsNotFound_WhenNothingSaved(t *testing.T) {
	engine, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	_, err = engine.Load(context.Background(), "books")

	assert.ErrorIs(t, err, recordstore.ErrDocumentNotFound)
}

func Test_SaveThenLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, err := filestore.New(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)

	doc, err := recordstore.BuildStorableDocument("books", []byte(`{"version":1,"books":[{"isbn":"ISBN-001"}]}`))
	require.NoError(t, err)

	require.NoError(t, engine.Save(ctx, doc))
	loaded, err := engine.Load(ctx, "books")

	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func Test_Save_OverwritesPreviousDocument_WithoutLeftovers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine, err := filestore.New(dir)
	require.NoError(t, err)

	first, err := recordstore.BuildStorableDocument("users", []byte(`{"users":[1]}`))
	require.NoError(t, err)
	second, err := recordstore.BuildStorableDocument("users", []byte(`{"users":[2]}`))
	require.NoError(t, err)

	require.NoError(t, engine.Save(ctx, first))
	require.NoError(t, engine.Save(ctx, second))

	loaded, err := engine.Load(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[2]}`, string(loaded.PayloadJSON))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "users.json", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func Test_Load_FailsOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	engine, err := filestore.New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.json"), []byte(`{"books": [`), 0o600))

	_, err = engine.Load(context.Background(), "books")

	assert.ErrorIs(t, err, recordstore.ErrLoadingDocumentFailed)
	assert.ErrorIs(t, err, recordstore.ErrInvalidPayloadJSON)
}

func Test_Save_FailsOnCanceledContext(t *testing.T) {
	engine, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	doc, err := recordstore.BuildStorableDocument("books", []byte(`{}`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = engine.Save(ctx, doc)

	assert.ErrorIs(t, err, recordstore.ErrSavingDocumentFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Load_RejectsInvalidCollectionName(t *testing.T) {
	engine, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	_, err = engine.Load(context.Background(), "../etc/passwd")

	assert.ErrorIs(t, err, recordstore.ErrInvalidCollectionName)
}
