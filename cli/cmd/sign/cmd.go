// Package sign implements "simple-c2pa sign embed" and "simple-c2pa sign
// export".
package sign

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/certificates"
	"github.com/guardianproject/simple-c2pa-go/cli/cmd/certificate"
	c2pacmd "github.com/guardianproject/simple-c2pa-go/cli/cmd/internal/cmd"
	v1 "github.com/guardianproject/simple-c2pa-go/cli/configuration/v1"
	c2pactx "github.com/guardianproject/simple-c2pa-go/cli/internal/context"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/enum"
	"github.com/guardianproject/simple-c2pa-go/cli/internal/flags/file"
	"github.com/guardianproject/simple-c2pa-go/contentcredentials"
	"github.com/guardianproject/simple-c2pa-go/filedata"
)

const (
	FlagConcurrencyLimit = "concurrency-limit"
	FlagCreated          = "created"
	FlagPlaced           = "placed"
	FlagWebsite          = "website"
	FlagAITraining       = "ai-training"
	FlagAssertion        = "assertion"
	FlagPrefix           = "prefix"
)

// AITrainingNone keeps the AI training assertions of the profile.
const AITrainingNone = "none"

// DefaultPrefix is prepended to the base name of every signed file.
const DefaultPrefix = "c2pa-"

type mode int

const (
	modeEmbed mode = iota
	modeExport
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign {embed|export}",
		Short: "Add content credentials to JPEG and PNG files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		DisableAutoGenTag: true,
	}
	cmd.AddCommand(
		newModeCommand(modeEmbed, "embed FILE...", "Embed a signed manifest into each file",
			`Writes a copy of every file with a signed manifest store embedded into it.
An existing manifest store in the input is replaced.`),
		newModeCommand(modeExport, "export FILE...", "Write a signed manifest next to each file",
			`Copies every file unchanged and writes its signed manifest store next to
the copy. The manifest file is named like the copy with its extension
replaced by ".c2pa".`),
	)
	return cmd
}

func newModeCommand(m mode, use, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: long + `

Without --certificate and --key a root CA and an end-entity certificate are
created on the fly for this invocation. Signing algorithms are tried in the
order es256, es384, es512, ps256, ps384, ps512, ed25519 and the first one
that fits the key is used.

Assertions given as flags are added on top of those of the profile.`,
		Args: cobra.MinimumNArgs(1),
		Example: strings.TrimSpace(`
# sign two photos with throw-away certificates
simple-c2pa sign embed --created photo1.jpg photo2.png

# sign with an existing certificate and restrict AI training
simple-c2pa sign embed --certificate cc.pem --key cc.key --ai-training restricted photo.jpg

# add a custom JSON assertion and write sidecar manifests
simple-c2pa sign export --assertion 'org.example.note={"reviewed":true}' photo.jpg`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, m, args)
		},
		DisableAutoGenTag: true,
	}

	flags := cmd.Flags()
	file.Var(flags, c2pacmd.CertificateFlag, "", "PEM certificate chain used for signing, leaf first")
	file.Var(flags, c2pacmd.KeyFlag, "", "PEM private key of the signing certificate")
	flags.String(c2pacmd.OutputDirectoryFlag, "", "directory for the signed files (defaults to the directory of each input)")
	flags.String(FlagPrefix, DefaultPrefix, "prefix of the output file names")
	flags.Int(FlagConcurrencyLimit, 4, "maximum number of files signed in parallel")
	flags.Bool(FlagCreated, false, "add a c2pa.created action")
	flags.Bool(FlagPlaced, false, "add a c2pa.placed action")
	flags.String(FlagWebsite, "", "add a website statement")
	enum.Var(flags, FlagAITraining, []string{AITrainingNone, v1.AITrainingRestricted, v1.AITrainingPermissive},
		"add AI training and data mining assertions")
	flags.StringArray(FlagAssertion, nil, "add a JSON assertion given as label=json, may be repeated")
	return cmd
}

func run(cmd *cobra.Command, m mode, args []string) error {
	ctx := cmd.Context()
	profile := c2pactx.FromContext(ctx).Profile()

	assertions, err := assertionsFromFlags(cmd.Flags(), profile.Assertions)
	if err != nil {
		return err
	}
	signingCert, err := signingCertificate(ctx, cmd.Flags(), profile.Certificate)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt(FlagConcurrencyLimit)
	if err != nil {
		return err
	}
	if limit < 1 {
		return fmt.Errorf("--%s must be at least 1", FlagConcurrencyLimit)
	}
	outDir, err := cmd.Flags().GetString(c2pacmd.OutputDirectoryFlag)
	if err != nil {
		return err
	}
	prefix, err := cmd.Flags().GetString(FlagPrefix)
	if err != nil {
		return err
	}
	outputs, err := outputPaths(m, args, outDir, prefix)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o700); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	app := &contentcredentials.ApplicationInfo{
		Name:    profile.Application.Name,
		Version: profile.Application.Version,
		IconURI: profile.Application.IconURI,
	}

	written := make([]string, len(args))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, input := range args {
		eg.Go(func() error {
			start := time.Now()
			output := outputs[i]
			logger := slog.With(slog.String("input", input), slog.String("output", output))
			fctx := slogcontext.NewCtx(egctx, logger)
			logger.InfoContext(fctx, "signing")

			path, err := signFile(fctx, m, signingCert, app, assertions, input, output)
			if err != nil {
				return fmt.Errorf("signing %s: %w", input, err)
			}
			logger.InfoContext(fctx, "signed", slog.String("written", path), slog.String("duration", time.Since(start).String()))
			written[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, path := range written {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
			return err
		}
	}
	return nil
}

// outputPaths maps every input to its output file. Two inputs that would
// write the same file are rejected before anything is signed.
func outputPaths(m mode, inputs []string, outDir, prefix string) ([]string, error) {
	outputs := make([]string, len(inputs))
	claimed := make(map[string]string, 2*len(inputs))
	claim := func(path, input string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if other, ok := claimed[abs]; ok {
			return fmt.Errorf("%s and %s would both write %s", other, input, path)
		}
		claimed[abs] = input
		return nil
	}

	for _, input := range inputs {
		if err := claim(input, input); err != nil {
			return nil, err
		}
	}
	for i, input := range inputs {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(input)
		}
		outputs[i] = filepath.Join(dir, prefix+filepath.Base(input))
		if err := claim(outputs[i], input); err != nil {
			return nil, err
		}
		if m == modeExport {
			if err := claim(manifest.SidecarPath(outputs[i]), input); err != nil {
				return nil, err
			}
		}
	}
	return outputs, nil
}

func signFile(ctx context.Context, m mode, cert *certificates.Certificate, app *contentcredentials.ApplicationInfo, a v1.Assertions, input, output string) (string, error) {
	cc, err := contentcredentials.New(cert, filedata.FromPath(input), app)
	if err != nil {
		return "", err
	}
	if err := addAssertions(cc, a); err != nil {
		return "", err
	}

	var result *filedata.FileData
	switch m {
	case modeExport:
		result, err = cc.ExportManifest(ctx, output)
	default:
		result, err = cc.EmbedManifest(ctx, output)
	}
	if err != nil {
		return "", err
	}
	return result.GetPath()
}

// signingCertificate loads the certificate given by flags or creates a
// throw-away root and end-entity certificate.
func signingCertificate(ctx context.Context, flags *pflag.FlagSet, defaults v1.Certificate) (*certificates.Certificate, error) {
	certFlag, err := file.Get(flags, c2pacmd.CertificateFlag)
	if err != nil {
		return nil, err
	}
	keyFlag, err := file.Get(flags, c2pacmd.KeyFlag)
	if err != nil {
		return nil, err
	}
	switch {
	case certFlag.IsSet() && keyFlag.IsSet():
		return certificate.LoadPair(certFlag, keyFlag)
	case certFlag.IsSet() || keyFlag.IsSet():
		return nil, fmt.Errorf("--%s and --%s must be given together", c2pacmd.CertificateFlag, c2pacmd.KeyFlag)
	}

	slog.WarnContext(ctx, "no signing certificate given, creating a throw-away certificate chain",
		slog.String("organization", defaults.Organization))
	root, err := certificates.CreateRootCertificate(defaults.Organization, 0)
	if err != nil {
		return nil, err
	}
	key, err := certificates.CreatePrivateKey()
	if err != nil {
		return nil, err
	}
	return certificates.CreateCertificate(certificates.NewCertificateOptions(
		key,
		certificates.CertificateType{
			Kind:         certificates.ContentCredentials,
			Organization: defaults.Organization,
			ValidityDays: defaults.ValidityDays,
		},
		root,
		defaults.Email,
		defaults.PGPFingerprint,
	))
}
