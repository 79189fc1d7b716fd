package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dynmig "github.com/reoring/dynmig"
)

func newDescribeCmd() *cobra.Command {
	var docs bool
	var ddl string
	cmd := &cobra.Command{
		Use:   "describe <migration-file>",
		Short: "Summarize a migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				return err
			}
			switch {
			case docs:
				fmt.Fprint(cmd.OutOrStdout(), dynmig.GenerateDocumentation(m))
			case ddl != "":
				fmt.Fprint(cmd.OutOrStdout(), dynmig.GenerateSQLDDL(m, ddl))
			default:
				fmt.Fprintln(cmd.OutOrStdout(), m.Describe())
				fmt.Fprintf(cmd.OutOrStdout(), "\nactions: %d, complexity: %d/10, reversible: %v\n",
					m.ActionCount(), dynmig.Complexity(m), dynmig.IsFullyReversible(m))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&docs, "docs", false, "render markdown documentation")
	cmd.Flags().StringVar(&ddl, "ddl", "", "render SQL DDL hints for the given table name")
	return cmd
}
