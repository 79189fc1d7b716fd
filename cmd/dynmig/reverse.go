package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dynmig "github.com/reoring/dynmig"
)

func newReverseCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "reverse <migration-file>",
		Short: "Write the structural reverse of a migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMigration(args[0])
			if err != nil {
				return err
			}
			if !dynmig.IsFullyReversible(m) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: migration is not fully reversible; the reverse may fail when applied")
			}
			target := args[0]
			if out != "" {
				target = out
			}
			if err := saveMigration(target, m.Reverse()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverse written to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the reversed migration here instead of in place")
	return cmd
}
