package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-go/lending"
	"github.com/AntonStoeckl/library-lending-go/shell/config"
)

type rootFlags struct {
	asJSON bool
}

// NewRootCommand creates the librarian command tree. Results are written to out, warnings and logs to errOut.
func NewRootCommand(out io.Writer, errOut io.Writer) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "librarian",
		Short:         "Keep the records of a small lending library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return asExitError(ExitCodeUsage, err)
	})

	cmd.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Print results as JSON")

	cmd.AddCommand(newAddBookCommand())
	cmd.AddCommand(newRegisterUserCommand())
	cmd.AddCommand(newBorrowCommand())
	cmd.AddCommand(newReturnCommand())
	cmd.AddCommand(newBooksCommand(flags))
	cmd.AddCommand(newSearchCommand(flags))
	cmd.AddCommand(newLoansCommand(flags))
	cmd.AddCommand(newAuditCommand(flags))

	return cmd
}

type library struct {
	engine    *lending.Engine
	report    lending.StartupReport
	obs       *config.Observability
	storage   *config.Storage
	logCloser io.Closer
}

func openLibrary(ctx context.Context, errOut io.Writer) (*library, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, asExitError(ExitCodeUsage, err)
	}

	handler, logCloser, err := cfg.NewLogHandler(errOut)
	if err != nil {
		return nil, asExitError(ExitCodeIO, err)
	}

	obs, err := config.NewObservability(cfg, handler)
	if err != nil {
		return nil, asExitError(ExitCodeUsage, errors.Join(err, logCloser.Close()))
	}

	storage, err := config.OpenStorage(ctx, cfg, obs)
	if err != nil {
		return nil, asExitError(ExitCodeIO, errors.Join(err, logCloser.Close()))
	}

	lib := &library{obs: obs, storage: storage, logCloser: logCloser}

	lib.engine, lib.report, err = config.OpenLibrary(ctx, cfg, obs, storage.Store)
	if err != nil {
		return nil, mapEngineError(errors.Join(err, lib.close(ctx)))
	}

	return lib, nil
}

func (l *library) close(ctx context.Context) error {
	return errors.Join(
		l.obs.Shutdown(ctx),
		l.storage.Close(),
		l.logCloser.Close(),
	)
}

func (l *library) printStartupWarnings(errOut io.Writer) {
	for _, warning := range l.report.LoadWarnings {
		_, _ = fmt.Fprintf(errOut, "warning: %v\n", warning)
	}

	for _, dangling := range l.report.DanglingLoans {
		_, _ = fmt.Fprintf(errOut, "warning: user %s has borrowed %s which is missing from the catalog\n",
			dangling.UserID, dangling.ISBN)
	}

	if len(l.report.Reconciled) > 0 {
		_, _ = fmt.Fprintf(errOut, "reconciled on-loan flags of %d books\n", len(l.report.Reconciled))
	}
}

// withLibrary opens the configured library, runs fn and closes the library again.
func withLibrary(cmd *cobra.Command, fn func(ctx context.Context, engine *lending.Engine) error) (err error) {
	ctx := cmd.Context()

	lib, err := openLibrary(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := lib.close(ctx); closeErr != nil {
			err = errors.Join(err, asExitError(ExitCodeIO, closeErr))
		}
	}()

	lib.printStartupWarnings(cmd.ErrOrStderr())

	return fn(ctx, lib.engine)
}
