package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <migration-file>",
		Short: "Dump the decoded action tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				return err
			}
			dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
			dumper.Fdump(cmd.OutOrStdout(), m.Actions)
			return nil
		},
	}
}
