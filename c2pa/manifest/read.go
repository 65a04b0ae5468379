package manifest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/asset"
	"github.com/guardianproject/simple-c2pa-go/c2pa/cose"
	"github.com/guardianproject/simple-c2pa-go/c2pa/internal/codec"
	"github.com/guardianproject/simple-c2pa-go/c2pa/jumbf"
)

// ErrHashMismatch is returned when an assertion or the asset does not
// match the hash recorded in the claim.
var ErrHashMismatch = errors.New("manifest: hash mismatch")

// Store is the active manifest of a manifest store after its structure,
// assertion hashes, claim signature and data hash were checked. Trust in
// the signing certificate is not evaluated.
type Store struct {
	Label      string
	Claim      Claim
	Assertions []*assertions.Assertion
	Signature  *cose.Verified
}

// Assertion returns the assertion with label.
func (s *Store) Assertion(label string) (*assertions.Assertion, bool) {
	for _, a := range s.Assertions {
		if a.Label == label {
			return a, true
		}
	}
	return nil, false
}

// Read extracts and checks the manifest store embedded in data.
func Read(data []byte) (*Store, error) {
	h, err := asset.ForMediaType(mimetype.Detect(data).String())
	if err != nil {
		return nil, err
	}
	raw, err := h.Extract(data)
	if err != nil {
		return nil, err
	}
	return check(raw, data)
}

// ReadSidecar checks a detached manifest store against its asset.
func ReadSidecar(store, data []byte) (*Store, error) {
	return check(store, data)
}

func check(raw, data []byte) (*Store, error) {
	root, err := jumbf.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !root.IsSuperBox() || root.ContentType != jumbf.UUIDManifestStore {
		return nil, fmt.Errorf("manifest: %w: not a manifest store", jumbf.ErrNotSuperBox)
	}

	var active *jumbf.Box
	for _, c := range root.Children {
		if c.IsSuperBox() && c.ContentType == jumbf.UUIDManifest {
			active = c
		}
	}
	if active == nil {
		return nil, fmt.Errorf("manifest: %w: no manifest in store", jumbf.ErrNotFound)
	}

	claimBytes, err := contentOf(active, LabelClaim)
	if err != nil {
		return nil, err
	}
	var claim Claim
	if err := codec.Unmarshal(claimBytes, &claim); err != nil {
		return nil, fmt.Errorf("manifest: decode claim: %w", err)
	}

	sig, err := contentOf(active, LabelSignature)
	if err != nil {
		return nil, err
	}
	verified, err := cose.Verify(sig, claimBytes)
	if err != nil {
		return nil, err
	}

	assertionStore, err := active.Child(LabelAssertionStore)
	if err != nil {
		return nil, err
	}
	s := &Store{Label: active.Label, Claim: claim, Signature: verified}
	for _, ref := range claim.Assertions {
		a, err := checkAssertion(assertionStore, ref)
		if err != nil {
			return nil, err
		}
		s.Assertions = append(s.Assertions, a)
	}

	if a, ok := s.Assertion(assertions.LabelDataHash); ok {
		var dh assertions.DataHash
		if err := a.Decode(&dh); err != nil {
			return nil, fmt.Errorf("manifest: decode data hash: %w", err)
		}
		if err := dh.Verify(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHashMismatch, err)
		}
	}
	return s, nil
}

func checkAssertion(store *jumbf.Box, ref HashedURI) (*assertions.Assertion, error) {
	label, err := labelFromURL(ref.URL)
	if err != nil {
		return nil, err
	}
	box, err := store.Child(label)
	if err != nil {
		return nil, err
	}
	sum, err := hashBox(box)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sum, ref.Hash) {
		return nil, fmt.Errorf("%w: assertion %q", ErrHashMismatch, label)
	}
	content, err := box.Content()
	if err != nil {
		return nil, err
	}
	format := assertions.CBOR
	if content.Type == jumbf.TypeJSON {
		format = assertions.JSON
	}
	return &assertions.Assertion{Label: label, Format: format, Data: content.Data}, nil
}

func contentOf(manifest *jumbf.Box, label string) ([]byte, error) {
	box, err := manifest.Child(label)
	if err != nil {
		return nil, err
	}
	content, err := box.Content()
	if err != nil {
		return nil, err
	}
	return content.Data, nil
}
