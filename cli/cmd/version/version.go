// Package version implements "simple-c2pa version".
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/enum"
)

const (
	FlagFormat                = "format"
	FlagFormatShortHand       = "f"
	FlagFormatJSON            = "json"
	FlagFormatGoBuildInfo     = "gobuildinfo"
	FlagFormatGoBuildInfoJSON = "gobuildinfojson"
)

// BuildVersion overrides the module version from the build info when set:
//
//	-ldflags "-X github.com/guardianproject/simple-c2pa-go/cli/cmd/version.BuildVersion=1.2.3"
var BuildVersion = "n/a"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version of simple-c2pa",
		Long: fmt.Sprintf(`Prints the build version of simple-c2pa.

With %[1]q the version is split into its semantic version parts and printed
as JSON together with the library version that appears in claim generators.
%[2]q prints the Go build information and %[3]q the same as JSON.`,
			FlagFormatJSON, FlagFormatGoBuildInfo, FlagFormatGoBuildInfoJSON),
		Example: fmt.Sprintf(`simple-c2pa version --format %s`, FlagFormatGoBuildInfo),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := enum.Get(cmd.Flags(), FlagFormat)
			if err != nil {
				return err
			}
			bi, ok := readBuildInfo()
			if !ok {
				return fmt.Errorf("no build info available")
			}
			if BuildVersion != "n/a" {
				bi.Main.Version = BuildVersion
			}
			switch format {
			case FlagFormatGoBuildInfo:
				_, err = io.Copy(cmd.OutOrStdout(), strings.NewReader(bi.String()))
				return err
			case FlagFormatGoBuildInfoJSON:
				return json.NewEncoder(cmd.OutOrStdout()).Encode(bi)
			default:
				return json.NewEncoder(cmd.OutOrStdout()).Encode(GetInfo(bi))
			}
		},
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), FlagFormat, FlagFormatShortHand,
		[]string{FlagFormatJSON, FlagFormatGoBuildInfo, FlagFormatGoBuildInfoJSON}, "output format")
	return cmd
}
