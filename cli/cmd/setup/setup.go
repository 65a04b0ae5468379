// Package setup prepares the shared state of a command invocation.
package setup

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/cli/cmd/configuration"
	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
	c2pactx "github.com/guardianproject/simple-c2pa-go/cli/internal/context"
)

// SetupProfile loads the profile for cmd and merges overrides on top of it.
// A profile named explicitly by flag must load; errors in profiles from the
// well known locations are fatal as well since they would silently change
// what gets signed.
func SetupProfile(cmd *cobra.Command, overrides ...*v1.Profile) error {
	profile, err := configuration.GetProfileForCommand(cmd)
	if err != nil {
		return fmt.Errorf("could not load profile: %w", err)
	}
	profile = v1.Merge(append([]*v1.Profile{profile}, overrides...)...)
	slog.DebugContext(cmd.Context(), "profile ready",
		slog.String("application", profile.Application.Name),
		slog.String("organization", profile.Certificate.Organization))
	cmd.SetContext(c2pactx.WithProfile(cmd.Context(), profile))
	return nil
}
