package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	dynmig "github.com/reoring/dynmig"
	"github.com/reoring/dynmig/codec"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dynmig",
		Short:         "Inspect and apply dynamic value migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newDescribeCmd(),
		newValidateCmd(),
		newOptimizeCmd(),
		newReverseCmd(),
		newApplyCmd(),
		newInspectCmd(),
	)
	return root
}

// loadMigration reads a migration file, picking the codec by extension.
func loadMigration(path string) (dynmig.Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dynmig.Migration{}, err
	}
	if isYAMLPath(path) {
		return codec.DecodeMigrationYAML(data)
	}
	return codec.DecodeMigrationJSON(data)
}

func saveMigration(path string, m dynmig.Migration) error {
	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = codec.EncodeMigrationYAML(m)
	} else {
		data, err = codec.EncodeMigrationJSON(m)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadValue(path string) (dynmig.DynamicValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return codec.DecodeValueYAML(data)
	}
	return codec.DecodeValueJSON(data)
}

func saveValue(path string, v dynmig.DynamicValue) error {
	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = codec.EncodeValueYAML(v)
	} else {
		data, err = codec.EncodeValueJSON(v)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func printIssues(cmd *cobra.Command, err error) {
	iss, ok := dynmig.AsIssues(err)
	if !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return
	}
	for _, it := range iss {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s at %s: %s\n", it.Code, it.Path, it.Message)
	}
}
