package cli

import (
	"errors"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/lending"
)

const (
	ExitCodeSuccess      = 0
	ExitCodeGeneric      = 1
	ExitCodeUsage        = 2
	ExitCodeNotFound     = 3
	ExitCodeRejected     = 4
	ExitCodeInconsistent = 5
	ExitCodeIO           = 7
)

var ErrInconsistentRecords = errors.New("persisted records are inconsistent")

// ExitError carries the process exit code for an error returned by a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}

	return e.Code
}

func asExitError(code int, err error) error {
	if err == nil {
		return nil
	}

	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}

	return &ExitError{Code: code, Err: err}
}

// mapEngineError picks the exit code for an error returned by the lending engine.
func mapEngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lending.ErrPartialCommit),
		errors.Is(err, core.ErrStorageUnwritable),
		errors.Is(err, core.ErrStorageUnreadable):
		return asExitError(ExitCodeIO, err)
	case errors.Is(err, core.ErrNotFound):
		return asExitError(ExitCodeNotFound, err)
	case errors.Is(err, core.ErrEmptyKey):
		return asExitError(ExitCodeUsage, err)
	case errors.Is(err, core.ErrBookUnavailable),
		errors.Is(err, core.ErrLoanNotFound),
		errors.Is(err, core.ErrDuplicateKey):
		return asExitError(ExitCodeRejected, err)
	default:
		return asExitError(ExitCodeGeneric, err)
	}
}

// ExitCode returns the process exit code for an error returned by the root command.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return withExit.ExitCode()
	}

	return ExitCodeGeneric
}
