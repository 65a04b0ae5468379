// Package hooks holds the persistent pre-run hook of the root command.
package hooks

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/cli/cmd/setup"
	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
	c2pactx "github.com/guardianproject/simple-c2pa-go/cli/internal/context"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/log"
)

// Option adjusts the pre-run setup.
type Option interface {
	Apply(b *Builder) error
}

type optionFunc func(*Builder) error

func (f optionFunc) Apply(b *Builder) error { return f(b) }

// Builder accumulates the state the setup layer expects.
type Builder struct {
	cmd       *cobra.Command
	overrides []*v1.Profile
}

// WithProfileOverride layers profile on top of the loaded profile files.
func WithProfileOverride(profile *v1.Profile) Option {
	return optionFunc(func(b *Builder) error {
		if profile == nil {
			return fmt.Errorf("profile override must not be nil")
		}
		b.overrides = append(b.overrides, profile)
		return nil
	})
}

// PreRunE sets up the command with defaults.
func PreRunE(cmd *cobra.Command, args []string) error {
	return PreRunEWithOptions(cmd, args)
}

// PreRunEWithOptions installs the logger, loads the profile and registers
// the shared context.
func PreRunEWithOptions(cmd *cobra.Command, _ []string, opts ...Option) error {
	// inherit IO from parent if exists
	if parent := cmd.Parent(); parent != nil {
		cmd.SetOut(parent.OutOrStdout())
		cmd.SetErr(parent.ErrOrStderr())
	}

	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)

	b := &Builder{cmd: cmd}
	for _, opt := range opts {
		if err := opt.Apply(b); err != nil {
			return fmt.Errorf("apply option: %w", err)
		}
	}

	if err := setup.SetupProfile(cmd, b.overrides...); err != nil {
		return err
	}
	c2pactx.Register(cmd)
	return nil
}
