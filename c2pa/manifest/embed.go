package manifest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/guardianproject/simple-c2pa-go/blob"
	"github.com/guardianproject/simple-c2pa-go/blob/filesystem"
	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/asset"
	"github.com/guardianproject/simple-c2pa-go/filedata"
	"github.com/guardianproject/simple-c2pa-go/signing"
)

// SidecarExtension is the file extension of detached manifest stores.
const SidecarExtension = ".c2pa"

// the exclusion length feeds back into the store size through its CBOR
// encoding, so embedding repeats until the layout is stable
const maxLayoutPasses = 8

var errLayoutUnstable = errors.New("manifest: data hash exclusion did not settle")

// SidecarPath returns path with its extension replaced by ".c2pa".
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + SidecarExtension
}

// Embed signs the manifest for the asset at src and writes the result.
//
// In embedded mode the manifest store is placed into a copy of src written
// to dst and dst is returned. Any manifest store already in src is
// replaced. In sidecar mode src is copied to dst unchanged and the store is
// written to SidecarPath(dst), which is returned.
//
// A successful Embed finalizes the manifest.
func (m *Manifest) Embed(ctx context.Context, src, dst string, signer signing.Signer) (string, error) {
	if m.finalized {
		return "", ErrFinalized
	}

	b, err := filesystem.GetBlobFromOSPath(src)
	if err != nil {
		return "", err
	}
	data, err := blob.ReadAll(b)
	if err != nil {
		return "", fmt.Errorf("manifest: read %s: %w", src, err)
	}

	mediaType := mimetype.Detect(data).String()
	l := layout{
		label:      "urn:uuid:" + uuid.NewString(),
		instanceID: "xmp:iid:" + uuid.NewString(),
		format:     mediaType,
	}
	if m.format != "" {
		l.format = m.format
	}

	var written string
	if m.sidecar {
		store, err := m.signDetached(ctx, l, data, signer)
		if err != nil {
			return "", err
		}
		if filepath.Clean(src) != filepath.Clean(dst) {
			if err := writeFile(dst, data); err != nil {
				return "", err
			}
		}
		written = SidecarPath(dst)
		if err := writeFile(written, store); err != nil {
			return "", err
		}
	} else {
		h, err := asset.ForMediaType(mediaType)
		if err != nil {
			return "", err
		}
		stripped, err := h.Remove(data)
		if err != nil {
			return "", err
		}
		out, err := m.signEmbedded(ctx, l, h, stripped, signer)
		if err != nil {
			return "", err
		}
		written = dst
		if err := writeFile(written, out); err != nil {
			return "", err
		}
	}

	m.finalized = true
	slog.DebugContext(ctx, "manifest written",
		slog.String("manifest", l.label),
		slog.String("algorithm", signer.Algorithm().String()),
		slog.String("output", written),
		slog.Bool("sidecar", m.sidecar))
	return written, nil
}

// signEmbedded searches the fixed point where the data hash exclusion
// equals the range the signed store occupies in the container.
func (m *Manifest) signEmbedded(ctx context.Context, l layout, h asset.Handler, stripped []byte, signer signing.Signer) ([]byte, error) {
	var exclusion assertions.Exclusion
	for range maxLayoutPasses {
		dataHash, err := assertions.NewDataHash(stripped)
		if err != nil {
			return nil, err
		}
		dataHash.Exclusions = []assertions.Exclusion{exclusion}

		store, err := m.signStore(ctx, l, dataHash, signer)
		if err != nil {
			return nil, err
		}
		out, got, err := h.Embed(stripped, store)
		if err != nil {
			return nil, err
		}
		if got == exclusion {
			return out, nil
		}
		exclusion = got
	}
	return nil, errLayoutUnstable
}

func (m *Manifest) signDetached(ctx context.Context, l layout, data []byte, signer signing.Signer) ([]byte, error) {
	dataHash, err := assertions.NewDataHash(data)
	if err != nil {
		return nil, err
	}
	return m.signStore(ctx, l, dataHash, signer)
}

// signStore lists the parent ingredient, the stored assertions in order and
// the data hash, then builds the signed store.
func (m *Manifest) signStore(ctx context.Context, l layout, dataHash *assertions.DataHash, signer signing.Signer) ([]byte, error) {
	list := make([]*assertions.Assertion, 0, m.store.Len()+2)
	if m.parent != nil {
		a, err := m.parent.Assertion()
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	for a := range m.Assertions() {
		list = append(list, a)
	}
	a, err := dataHash.Assertion()
	if err != nil {
		return nil, err
	}
	list = append(list, a)
	return m.buildStore(ctx, l, list, signer)
}

func writeFile(path string, data []byte) error {
	if err := filesystem.CopyBlobToOSPath(filedata.FromBytes(data, filepath.Base(path)), path); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}
