package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dynmig "github.com/reoring/dynmig"
)

func newApplyCmd() *cobra.Command {
	var out string
	var lint bool
	cmd := &cobra.Command{
		Use:   "apply <migration-file> <value-file>",
		Short: "Apply a migration to a value file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				return err
			}
			v, err := loadValue(args[1])
			if err != nil {
				return err
			}
			if lint {
				for _, w := range dynmig.LintValue(m, v) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s at %s\n", w.Code, w.Path)
				}
			}
			res, err := m.Apply(v)
			if err != nil {
				printIssues(cmd, err)
				return fmt.Errorf("migration failed")
			}
			if out == "" {
				out = args[1]
			}
			if err := saveValue(out, res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated value written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the migrated value here instead of in place")
	cmd.Flags().BoolVar(&lint, "lint", false, "warn about transforms hitting empty collections")
	return cmd
}
