package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/guardianproject/simple-c2pa-go/contentcredentials"
)

// Info is the JSON form of the version command.
type Info struct {
	Major          string `json:"major"`
	Minor          string `json:"minor"`
	Patch          string `json:"patch"`
	PreRelease     string `json:"prerelease,omitempty"`
	Meta           string `json:"meta,omitempty"`
	Version        string `json:"version"`
	GitCommit      string `json:"gitCommit,omitempty"`
	BuildDate      string `json:"buildDate,omitempty"`
	LibraryName    string `json:"libraryName"`
	LibraryVersion string `json:"libraryVersion"`
	GoVersion      string `json:"goVersion"`
	Compiler       string `json:"compiler"`
	Platform       string `json:"platform"`
}

// GetInfo splits the main module version of bi into its semantic version
// parts. Go pseudo versions such as v0.0.0-20250102150405-abcdef123456
// yield the build date and commit. Versions that are not semantic are kept
// verbatim with 0.0.0 as parts.
func GetInfo(bi *debug.BuildInfo) Info {
	info := Info{
		LibraryName:    contentcredentials.LibraryName,
		LibraryVersion: contentcredentials.LibraryVersion,
		GoVersion:      runtime.Version(),
		Compiler:       runtime.Compiler,
		Platform:       fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	v, err := semver.NewVersion(bi.Main.Version)
	if err != nil {
		info.Version = bi.Main.Version
		info.Major, info.Minor, info.Patch = "0", "0", "0"
		return info
	}
	info.Version = v.String()
	info.Meta = v.Metadata()
	if pre := v.Prerelease(); pre != "" {
		info.PreRelease = pre
		info.BuildDate, info.GitCommit, _ = strings.Cut(pre, "-")
	}
	info.Major = strconv.FormatUint(v.Major(), 10)
	info.Minor = strconv.FormatUint(v.Minor(), 10)
	info.Patch = strconv.FormatUint(v.Patch(), 10)
	return info
}
