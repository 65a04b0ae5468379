// Package inspect implements "simple-c2pa inspect".
package inspect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/enum"
	"github.com/guardianproject/simple-c2pa-go/filedata"
)

const (
	FlagOutput  = "output"
	FlagSidecar = "sidecar"

	OutputTable = "table"
	OutputJSON  = "json"
)

// contentWidth limits the assertion content column of the table.
const contentWidth = 72

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Verify and show the manifest of a signed file",
		Long: `Reads the active manifest of FILE, checks the claim signature, every
assertion hash and the data hash, and prints the result.

A sidecar manifest is used when --sidecar is given or when a file named like
FILE with the extension ".c2pa" exists.
Trust in the signing certificate is not evaluated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := enum.Get(cmd.Flags(), FlagOutput)
			if err != nil {
				return err
			}
			sidecar, err := cmd.Flags().GetString(FlagSidecar)
			if err != nil {
				return err
			}
			store, err := read(args[0], sidecar)
			if err != nil {
				return err
			}
			rep, err := newReport(store)
			if err != nil {
				return err
			}
			switch output {
			case OutputJSON:
				return rep.writeJSON(cmd.OutOrStdout())
			default:
				return rep.writeTable(cmd.OutOrStdout())
			}
		},
		DisableAutoGenTag: true,
	}
	enum.VarP(cmd.Flags(), FlagOutput, "o", []string{OutputTable, OutputJSON}, "output format")
	cmd.Flags().String(FlagSidecar, "", "path of a sidecar manifest store")
	return cmd
}

func read(path, sidecar string) (*manifest.Store, error) {
	data, err := filedata.FromPath(path).GetBytes()
	if err != nil {
		return nil, err
	}
	if sidecar == "" {
		if _, err := os.Stat(manifest.SidecarPath(path)); err == nil {
			sidecar = manifest.SidecarPath(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if sidecar == "" {
		return manifest.Read(data)
	}
	store, err := filedata.FromPath(sidecar).GetBytes()
	if err != nil {
		return nil, err
	}
	return manifest.ReadSidecar(store, data)
}

type assertionReport struct {
	Label  string `json:"label"`
	Format string `json:"format"`
	Value  any    `json:"value"`
}

type report struct {
	Manifest       string            `json:"manifest"`
	Title          string            `json:"title,omitempty"`
	Format         string            `json:"format"`
	ClaimGenerator string            `json:"claimGenerator"`
	Algorithm      string            `json:"algorithm"`
	Signer         string            `json:"signer"`
	Issuer         string            `json:"issuer"`
	ChainLength    int               `json:"chainLength"`
	Assertions     []assertionReport `json:"assertions"`
}

func newReport(s *manifest.Store) (*report, error) {
	r := &report{
		Manifest:       s.Label,
		Title:          s.Claim.Title,
		Format:         s.Claim.Format,
		ClaimGenerator: s.Claim.ClaimGenerator,
		Algorithm:      s.Signature.Algorithm.String(),
		ChainLength:    len(s.Signature.Chain),
	}
	if len(s.Signature.Chain) > 0 {
		r.Signer = s.Signature.Chain[0].Subject.String()
		r.Issuer = s.Signature.Chain[0].Issuer.String()
	}
	for _, a := range s.Assertions {
		v, err := a.Value()
		if err != nil {
			return nil, err
		}
		r.Assertions = append(r.Assertions, assertionReport{Label: a.Label, Format: a.Format.String(), Value: v})
	}
	return r, nil
}

// canonical renders v as RFC 8785 JSON so that output is stable.
func canonical(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(data)
}

func (r *report) writeJSON(w io.Writer) error {
	data, err := canonical(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (r *report) writeTable(w io.Writer) error {
	var buf bytes.Buffer

	summary := table.NewWriter()
	summary.SetOutputMirror(&buf)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Manifest", r.Manifest},
		{"Title", r.Title},
		{"Format", r.Format},
		{"Claim generator", r.ClaimGenerator},
		{"Algorithm", r.Algorithm},
		{"Signer", r.Signer},
		{"Issuer", r.Issuer},
		{"Chain length", r.ChainLength},
	})
	summary.Render()

	assertions := table.NewWriter()
	assertions.SetOutputMirror(&buf)
	assertions.SetStyle(table.StyleLight)
	assertions.AppendHeader(table.Row{"Label", "Format", "Content"})
	for _, a := range r.Assertions {
		content, err := canonical(a.Value)
		if err != nil {
			return fmt.Errorf("encoding assertion %s: %w", a.Label, err)
		}
		assertions.AppendRow(table.Row{a.Label, a.Format, string(content)})
	}
	assertions.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: contentWidth},
	})
	assertions.Render()

	_, err := io.Copy(w, &buf)
	return err
}
