// Command b2cadmin is the operator CLI: schema migration, reference table
// lookups, offline essay scoring and per-user exports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "b2cadmin",
		Short:         "Bus2College backend administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newCollegesCmd(),
		newScoreCmd(),
		newExportCmd(),
	)
	return root
}
