// Package enum provides a pflag value that only accepts one of a fixed set
// of strings.
package enum

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

const Type = "enum"

// Flag accepts one value out of options. The first option is the default.
type Flag struct {
	target  *string
	options []string
}

func (f *Flag) Type() string {
	return Type
}

// New returns a Flag defaulting to options[0]. It panics without options.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("options must not be empty")
	}
	value := options[0]
	return &Flag{target: &value, options: options}
}

func (f *Flag) String() string {
	return *f.target
}

func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("expected one of %q", f.options)
	}
	*f.target = value
	return nil
}

// Get reads the current value of the enum flag name.
func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return flag.Value.String(), nil
}

// Var registers an enum flag without shorthand.
func Var(f *pflag.FlagSet, name string, options []string, usage string) {
	VarP(f, name, "", options, usage)
}

// VarP registers an enum flag. The usage text is extended with the sorted
// list of accepted values.
func VarP(f *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	sorted := slices.Clone(options)
	slices.Sort(sorted)
	f.VarP(New(options...), name, shorthand, fmt.Sprintf("%s\n(must be one of %v)", usage, sorted))
}
