// Package configuration locates and loads the profile of the simple-c2pa
// command.
package configuration

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/blob"
	"github.com/guardianproject/simple-c2pa-go/blob/filesystem"
	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
)

const (
	ConfigDirectoryName   = "simple-c2pa"
	ConfigFileName        = ConfigDirectoryName + "/config.yaml"
	NestedConfigFileName  = ".simple-c2pa.yaml"
	ConfigEnvironmentKey  = "SIMPLE_C2PA_CONFIG"
	ConfigCommandArgument = "config"
)

func RegisterConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(ConfigCommandArgument, "", `use the given profile file instead of the well known locations.
Without this flag every profile found is loaded, later ones overriding earlier ones:
1. $XDG_CONFIG_HOME/simple-c2pa/config.yaml or $HOME/.config/simple-c2pa/config.yaml
2. $PWD/.simple-c2pa.yaml
3. the path in the SIMPLE_C2PA_CONFIG environment variable`)
}

// GetProfileForCommand returns the profile named by the config flag of cmd
// or, without the flag, the merge of all profiles in the well known
// locations. Without any profile an empty profile is returned.
func GetProfileForCommand(cmd *cobra.Command) (*v1.Profile, error) {
	path, _ := cmd.Flags().GetString(ConfigCommandArgument)
	if path != "" {
		return GetProfileFromPath(path)
	}

	var profiles []*v1.Profile
	for _, path := range GetProfilePaths() {
		p, err := GetProfileFromPath(path)
		if err != nil {
			return nil, err
		}
		slog.Debug("profile loaded", slog.String("path", path))
		profiles = append(profiles, p)
	}
	return v1.Merge(profiles...), nil
}

// GetProfileFromPath reads and decodes the profile at path.
func GetProfileFromPath(path string) (*v1.Profile, error) {
	b, err := filesystem.GetBlobFromOSPath(path)
	if err != nil {
		return nil, err
	}
	data, err := blob.ReadAll(b)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	p, err := v1.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// GetProfilePaths lists the existing profile files in loading order.
func GetProfilePaths() []string {
	var paths []string
	if path := getFromXDGOrHomeDir(); path != "" {
		paths = append(paths, path)
	}
	if wd, err := os.Getwd(); err == nil {
		if path := existing(filepath.Join(wd, NestedConfigFileName)); path != "" {
			paths = append(paths, path)
		}
	}
	if env := os.Getenv(ConfigEnvironmentKey); env != "" {
		if path := existing(env); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

func getFromXDGOrHomeDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if path := existing(filepath.Join(xdg, ConfigFileName)); path != "" {
			return path
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return existing(filepath.Join(home, ".config", ConfigFileName))
	}
	return ""
}

func existing(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
