// Package cmd assembles the simple-c2pa command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/cli/cmd/certificate"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/configuration"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/generate"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/inspect"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/setup/hooks"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/sign"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/version"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/log"
)

// Execute runs the command tree and exits non-zero on failure. It is
// called by main.main.
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simple-c2pa [sub-command]",
		Short: "Create certificates and sign photos with C2PA content credentials",
		Long: `simple-c2pa creates the certificates needed for content credentials and
signs JPEG and PNG files with a C2PA manifest, either embedded or as a
sidecar file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	configuration.RegisterConfigFlag(cmd)
	log.RegisterLoggingFlags(cmd.PersistentFlags())
	cmd.AddCommand(certificate.New())
	cmd.AddCommand(sign.New())
	cmd.AddCommand(inspect.New())
	cmd.AddCommand(generate.New())
	cmd.AddCommand(version.New())
	return cmd
}
