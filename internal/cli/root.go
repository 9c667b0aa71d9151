// Package cli implements the santa command line: the HTTP server, schema migrations and
// operator token tools.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the santa CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "santa",
		Short:         "Secret Santa draw service",
		Long:          "Runs the Secret Santa API: exclusion management and exactly-once draws.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewTokenCommand())

	return cmd
}
