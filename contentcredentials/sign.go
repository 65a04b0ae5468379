package contentcredentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/guardianproject/simple-c2pa-go/c2pa/manifest"
	"github.com/guardianproject/simple-c2pa-go/c2paerr"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/signing"
)

// EmbedManifest signs the manifest and writes the source file with the
// embedded manifest to outputPath, which is returned.
func (c *ContentCredentials) EmbedManifest(ctx context.Context, outputPath string) (*filedata.FileData, error) {
	return c.sign(ctx, outputPath, false)
}

// ExportManifest signs the manifest as a sidecar. The source file is copied
// to outputPath unchanged and the manifest store is written next to it with
// the extension ".c2pa". The sidecar file is returned.
func (c *ContentCredentials) ExportManifest(ctx context.Context, outputPath string) (*filedata.FileData, error) {
	return c.sign(ctx, outputPath, true)
}

func (c *ContentCredentials) sign(ctx context.Context, outputPath string, sidecar bool) (*filedata.FileData, error) {
	certPEM, err := c.certificate.GetCertificateBytes()
	if err != nil {
		return nil, err
	}
	keyPEM, err := c.certificate.GetPrivateKeyBytes()
	if err != nil {
		return nil, err
	}
	src, err := c.file.GetPath()
	if err != nil {
		return nil, err
	}

	var written string
	err = c.locked(func(m *manifest.Manifest) error {
		if err := m.SetSidecar(sidecar); err != nil {
			return err
		}
		written, err = c.tryAlgorithms(ctx, m, certPEM, keyPEM, src, outputPath)
		return err
	})
	if err != nil {
		return nil, err
	}
	return filedata.FromPath(written), nil
}

// tryAlgorithms walks signing.SupportedAlgorithms in order and stops at the
// first algorithm for which both signer construction and embedding work.
func (c *ContentCredentials) tryAlgorithms(ctx context.Context, m *manifest.Manifest, certPEM, keyPEM []byte, src, dst string) (string, error) {
	var errs []error
	for _, alg := range signing.SupportedAlgorithms {
		logger := slogcontext.FromCtx(ctx).With(slog.String("algorithm", alg.String()))
		logger.DebugContext(ctx, "trying signing algorithm")

		signer, err := c.newSigner(certPEM, keyPEM, alg)
		if err != nil {
			logger.DebugContext(ctx, "signer construction failed", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: create signer: %w", alg, err))
			continue
		}
		written, err := m.Embed(ctx, src, dst, signer)
		if err != nil {
			logger.DebugContext(ctx, "embedding failed", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: embed: %w", alg, err))
			continue
		}
		logger.DebugContext(ctx, "manifest signed", slog.String("output", written))
		return written, nil
	}
	return "", c2paerr.FailureWithCause(
		c2paerr.ErrNoAlgorithmSucceeded.Error(),
		errors.Join(append([]error{c2paerr.ErrNoAlgorithmSucceeded}, errs...)...),
	)
}
