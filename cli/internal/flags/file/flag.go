// Package file provides a pflag value for paths of existing input files such
// as certificates, keys and profiles.
package file

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/guardianproject/simple-c2pa-go/filedata"
)

// Type is the type name for the path flag.
const Type = "path"

// Flag holds a path and the result of stating it when it was set. A path
// that does not exist is accepted; Exists reports it.
type Flag struct {
	path string
	fs.FileInfo
}

func (f *Flag) String() string {
	return f.path
}

// Exists reports whether the path named an existing file or directory.
func (f *Flag) Exists() bool {
	return f.FileInfo != nil
}

// IsSet reports whether a non-empty path was given.
func (f *Flag) IsSet() bool {
	return f.path != ""
}

// FileData returns a handle on the file. Directories and missing files are
// rejected.
func (f *Flag) FileData() (*filedata.FileData, error) {
	switch {
	case !f.Exists():
		return nil, fmt.Errorf("file %q does not exist", f.path)
	case f.IsDir():
		return nil, fmt.Errorf("%q is a directory", f.path)
	}
	return filedata.FromPath(f.path), nil
}

func (f *Flag) Set(s string) error {
	f.path = s
	f.FileInfo = nil
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	switch {
	case err == nil:
		f.FileInfo = info
	case !os.IsNotExist(err):
		return fmt.Errorf("unable to stat path %q: %w", s, err)
	}
	return nil
}

func (f *Flag) Type() string {
	return Type
}

func Var(f *pflag.FlagSet, name string, value string, usage string) {
	VarP(f, name, "", value, usage)
}

func VarP(f *pflag.FlagSet, name, shorthand string, value string, usage string) {
	flag := &Flag{}
	_ = flag.Set(value)
	f.VarP(flag, name, shorthand, usage)
}

// Get returns the path flag registered as name.
func Get(f *pflag.FlagSet, name string) (*Flag, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag accessed but not defined: %s", name)
	}
	val, ok := flag.Value.(*Flag)
	if !ok {
		return nil, fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return val, nil
}
