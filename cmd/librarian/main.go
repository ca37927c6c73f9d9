package main

import (
	"fmt"
	"os"

	"github.com/AntonStoeckl/library-lending-go/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "librarian:", err)
		os.Exit(cli.ExitCode(err))
	}
}
