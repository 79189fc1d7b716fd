package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <migration-file>",
		Short: "Check that a migration file decodes cleanly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				printIssues(cmd, err)
				return fmt.Errorf("%s is not a valid migration", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d action(s)\n", m.ActionCount())
			return nil
		},
	}
}
