// Package test runs the simple-c2pa command in tests.
package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/cli/cmd"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/configuration"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/log"
)

// Options configures a test invocation.
type Options struct {
	args   []string
	out    io.Writer
	logs   io.Writer
	format string
}

type Option func(*Options)

// WithArgs sets the command line arguments.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.args = args
	}
}

// WithOutput captures the command output.
func WithOutput(out io.Writer) Option {
	return func(o *Options) {
		o.out = out
	}
}

// WithLogs captures the log output.
func WithLogs(logs io.Writer) Option {
	return func(o *Options) {
		o.logs = logs
	}
}

// WithLogFormat sets the log format, JSON by default.
func WithLogFormat(format string) Option {
	return func(o *Options) {
		o.format = format
	}
}

// Run executes the command with the given options. Profiles in the user's
// configuration directories and environment are hidden from the command.
func Run(tb testing.TB, opts ...Option) (*cobra.Command, error) {
	tb.Helper()
	tb.Setenv("HOME", tb.TempDir())
	tb.Setenv("XDG_CONFIG_HOME", tb.TempDir())
	tb.Setenv(configuration.ConfigEnvironmentKey, "")

	opt := Options{format: log.FormatJSON, out: io.Discard, logs: io.Discard}
	for _, o := range opts {
		o(&opt)
	}
	if len(opt.args) == 0 {
		opt.args = []string{"help"}
	}

	instance := cmd.New()
	instance.SetOut(opt.out)
	instance.SetErr(opt.logs)
	if err := instance.PersistentFlags().Lookup(log.FormatFlagName).Value.Set(opt.format); err != nil {
		return nil, fmt.Errorf("failed to set format: %w", err)
	}
	instance.SetArgs(opt.args)
	return instance.ExecuteContextC(tb.Context())
}

// LogEntry is one decoded JSON log line.
type LogEntry struct {
	Level  string
	Msg    string
	Extras map[string]any
}

// ParseLogs decodes JSON log lines and skips anything else.
func ParseLogs(data []byte) []LogEntry {
	var entries []LogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			continue
		}
		e := LogEntry{}
		e.Level, _ = raw["level"].(string)
		e.Msg, _ = raw["msg"].(string)
		delete(raw, "level")
		delete(raw, "msg")
		delete(raw, "time")
		e.Extras = raw
		entries = append(entries, e)
	}
	return entries
}
