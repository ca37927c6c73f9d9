package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-lending-go/core"
	"github.com/AntonStoeckl/library-lending-go/lending"
)

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return asExitError(ExitCodeUsage, validate(cmd, args))
	}
}

func newAddBookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-book ISBN TITLE AUTHOR CATEGORY",
		Short: "Add an available book to the catalog",
		Args:  usageArgs(cobra.ExactArgs(4)),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := core.BuildBook(args[0], args[1], args[2], args[3])
			if err != nil {
				return mapEngineError(err)
			}

			return withLibrary(cmd, func(ctx context.Context, engine *lending.Engine) error {
				if err := engine.AddBook(ctx, book); err != nil {
					return mapEngineError(err)
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "added book %s\n", book.ISBN)
				return err
			})
		},
	}
}

func newRegisterUserCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "register-user NAME",
		Short: "Register a user in the directory",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}

			user, err := core.BuildUser(id, args[0])
			if err != nil {
				return mapEngineError(err)
			}

			return withLibrary(cmd, func(ctx context.Context, engine *lending.Engine) error {
				if err := engine.RegisterUser(ctx, user); err != nil {
					return mapEngineError(err)
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "registered user %s\n", user.ID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID (a UUID is generated if empty)")

	return cmd
}

func newBorrowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow USER_ID ISBN",
		Short: "Lend a book to a user",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd, func(ctx context.Context, engine *lending.Engine) error {
				if err := engine.Borrow(ctx, args[0], args[1]); err != nil {
					return mapEngineError(err)
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "lent %s to %s\n", args[1], args[0])
				return err
			})
		},
	}
}

func newReturnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return USER_ID ISBN",
		Short: "Take a lent book back from a user",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd, func(ctx context.Context, engine *lending.Engine) error {
				if err := engine.Return(ctx, args[0], args[1]); err != nil {
					return mapEngineError(err)
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s returned %s\n", args[0], args[1])
				return err
			})
		},
	}
}

func newBooksCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List all books with their loan status",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLibrary(cmd, func(_ context.Context, engine *lending.Engine) error {
				books := engine.ListBooks()
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), toBookViews(books))
				}

				return writeBooks(cmd.OutOrStdout(), books)
			})
		},
	}
}

func newSearchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Find books whose title, author or category contains the query",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			return withLibrary(cmd, func(_ context.Context, engine *lending.Engine) error {
				books := engine.Search(query)
				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), toBookViews(books))
				}

				return writeBooks(cmd.OutOrStdout(), books)
			})
		},
	}
}

func newLoansCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "loans USER_ID",
		Short: "List the books a user has borrowed",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd, func(_ context.Context, engine *lending.Engine) error {
				isbns, err := engine.ListLoans(args[0])
				if err != nil {
					return mapEngineError(err)
				}

				books, err := engine.LoanedBooks(args[0])
				if err != nil {
					return mapEngineError(err)
				}

				if flags.asJSON {
					return writeJSON(cmd.OutOrStdout(), loansView{UserID: args[0], ISBNs: isbns, Books: toBookViews(books)})
				}

				if len(isbns) == 0 {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s has no loans\n", args[0])
					return err
				}

				return writeBooks(cmd.OutOrStdout(), books)
			})
		},
	}
}

func newAuditCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report inconsistencies between the catalog and the directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLibrary(cmd, func(_ context.Context, engine *lending.Engine) error {
				found := engine.Audit()

				if flags.asJSON {
					if err := writeJSON(cmd.OutOrStdout(), toInconsistencyViews(found)); err != nil {
						return err
					}
				} else {
					for _, f := range found {
						if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\n", f.Kind, f.ISBN, f.UserIDs); err != nil {
							return err
						}
					}
				}

				if len(found) > 0 {
					return asExitError(ExitCodeInconsistent, fmt.Errorf("%w: %d found", ErrInconsistentRecords, len(found)))
				}

				if !flags.asJSON {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "no inconsistencies")
					return err
				}

				return nil
			})
		},
	}
}
