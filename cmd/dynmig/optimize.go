package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dynmig "github.com/reoring/dynmig"
)

func newOptimizeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "optimize <migration-file>",
		Short: "Rewrite a migration into an equivalent shorter one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				return err
			}
			opt := dynmig.Optimize(m)
			target := args[0]
			if out != "" {
				target = out
			}
			if err := saveMigration(target, opt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d -> %d action(s), written to %s\n",
				m.ActionCount(), opt.ActionCount(), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the optimized migration here instead of in place")
	return cmd
}
