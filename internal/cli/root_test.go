package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupLibraryEnv(t *testing.T) string {
	t.Helper()

	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("LIBRARY_BACKEND", "file")
	t.Setenv("LIBRARY_DATA_DIR", dataDir)
	t.Setenv("LIBRARY_LOG_LEVEL", "error")

	return dataDir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func seedLibrary(t *testing.T) {
	t.Helper()

	_, _, err := runCLI(t, "add-book", "ISBN-001", "Dune", "Frank Herbert", "Science Fiction")
	require.NoError(t, err)
	_, _, err = runCLI(t, "add-book", "ISBN-002", "Emma", "Jane Austen", "Classic")
	require.NoError(t, err)
	_, _, err = runCLI(t, "register-user", "--id", "u-1", "Ada Lovelace")
	require.NoError(t, err)
}

func TestRootHasLibraryCommands(t *testing.T) {
	cmd := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})

	for _, name := range []string{"add-book", "register-user", "borrow", "return", "books", "search", "loans", "audit"} {
		_, _, err := cmd.Find([]string{name})
		require.NoErrorf(t, err, "expected command %q", name)
	}

	require.NotNil(t, cmd.PersistentFlags().Lookup("json"))
}

func TestBorrowAndReturnRoundTrip(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)

	out, _, err := runCLI(t, "borrow", "u-1", "ISBN-001")
	require.NoError(t, err)
	require.Contains(t, out, "lent ISBN-001 to u-1")

	out, _, err = runCLI(t, "loans", "u-1")
	require.NoError(t, err)
	require.Contains(t, out, "Dune")
	require.Contains(t, out, "on loan")

	out, _, err = runCLI(t, "return", "u-1", "ISBN-001")
	require.NoError(t, err)
	require.Contains(t, out, "u-1 returned ISBN-001")

	out, _, err = runCLI(t, "loans", "u-1")
	require.NoError(t, err)
	require.Contains(t, out, "u-1 has no loans")
}

func TestBorrowUnavailableBookIsRejected(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)
	_, _, err := runCLI(t, "register-user", "--id", "u-2", "Grace Hopper")
	require.NoError(t, err)

	_, _, err = runCLI(t, "borrow", "u-1", "ISBN-001")
	require.NoError(t, err)

	_, _, err = runCLI(t, "borrow", "u-2", "ISBN-001")
	require.Error(t, err)
	require.Equal(t, ExitCodeRejected, ExitCode(err))
}

func TestBorrowUnknownUserIsNotFound(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)

	_, _, err := runCLI(t, "borrow", "nobody", "ISBN-001")
	require.Error(t, err)
	require.Equal(t, ExitCodeNotFound, ExitCode(err))
}

func TestAddDuplicateBookIsRejected(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)

	_, _, err := runCLI(t, "add-book", "ISBN-001", "Dune Messiah", "Frank Herbert", "Science Fiction")
	require.Error(t, err)
	require.Equal(t, ExitCodeRejected, ExitCode(err))
}

func TestRegisterUserGeneratesID(t *testing.T) {
	setupLibraryEnv(t)

	out, _, err := runCLI(t, "register-user", "Alan Turing")
	require.NoError(t, err)

	id := strings.TrimSpace(strings.TrimPrefix(out, "registered user "))
	require.Len(t, id, 36)
}

func TestSearchOutputsJSON(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)

	out, _, err := runCLI(t, "--json", "search", "AUSTEN")
	require.NoError(t, err)

	var books []bookView
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 1)
	require.Equal(t, "ISBN-002", books[0].ISBN)
	require.False(t, books[0].OnLoan)
}

func TestBooksListsEveryBook(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)

	out, _, err := runCLI(t, "books")
	require.NoError(t, err)
	require.Contains(t, out, "ISBN-001\tDune\tFrank Herbert\tScience Fiction\tavailable")
	require.Contains(t, out, "ISBN-002\tEmma")
}

func TestLoansOutputsJSON(t *testing.T) {
	setupLibraryEnv(t)
	seedLibrary(t)
	_, _, err := runCLI(t, "borrow", "u-1", "ISBN-002")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--json", "loans", "u-1")
	require.NoError(t, err)

	var loans loansView
	require.NoError(t, json.Unmarshal([]byte(out), &loans))
	require.Equal(t, []string{"ISBN-002"}, loans.ISBNs)
	require.Len(t, loans.Books, 1)
	require.True(t, loans.Books[0].OnLoan)
}

func TestAuditReportsDanglingLoan(t *testing.T) {
	dataDir := setupLibraryEnv(t)
	seedLibrary(t)
	_, _, err := runCLI(t, "borrow", "u-1", "ISBN-001")
	require.NoError(t, err)

	out, _, err := runCLI(t, "audit")
	require.NoError(t, err)
	require.Contains(t, out, "no inconsistencies")

	// the catalog loses the lent book behind the engine's back
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "books.json"), []byte(`{"version":1,"books":[]}`), 0o600))

	out, errOut, err := runCLI(t, "audit")
	require.Error(t, err)
	require.Equal(t, ExitCodeInconsistent, ExitCode(err))
	require.Contains(t, out, "dangling_loan\tISBN-001\t[u-1]")
	require.Contains(t, errOut, "user u-1 has borrowed ISBN-001 which is missing from the catalog")
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	setupLibraryEnv(t)
	t.Setenv("LIBRARY_BACKEND", "redis")

	_, _, err := runCLI(t, "books")
	require.Error(t, err)
	require.Equal(t, ExitCodeUsage, ExitCode(err))
}

func TestWrongArgumentCountIsUsageError(t *testing.T) {
	setupLibraryEnv(t)

	_, _, err := runCLI(t, "borrow", "u-1")
	require.Error(t, err)
	require.Equal(t, ExitCodeUsage, ExitCode(err))
}

func TestExitCodeOfPlainAndNilErrors(t *testing.T) {
	require.Equal(t, ExitCodeSuccess, ExitCode(nil))
	require.Equal(t, ExitCodeGeneric, ExitCode(errors.New("disk on fire")))
	require.Equal(t, ExitCodeIO, ExitCode(fmt.Errorf("wrapped: %w", asExitError(ExitCodeIO, errors.New("read failed")))))
}
