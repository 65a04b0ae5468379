// Package generate implements "simple-c2pa generate docs" and
// "simple-c2pa generate schema".
package generate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
)

const FlagDirectory = "directory"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate {docs|schema}",
		Short: "Generate documentation and the profile schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
	}
	cmd.AddCommand(newDocs(), newSchema())
	return cmd
}

func newDocs() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Write one markdown page per command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cmd.Flags().GetString(FlagDirectory)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating documentation directory: %w", err)
			}
			return doc.GenMarkdownTree(cmd.Root(), dir)
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().String(FlagDirectory, "docs/reference", "directory the markdown pages are written to")
	return cmd
}

func newSchema() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the profile file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := v1.JSONSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
		DisableAutoGenTag: true,
	}
}
