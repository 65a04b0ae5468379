package manifest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/cose"
	"github.com/guardianproject/simple-c2pa-go/c2pa/internal/codec"
	"github.com/guardianproject/simple-c2pa-go/c2pa/jumbf"
	"github.com/guardianproject/simple-c2pa-go/signing"
)

// JUMBF labels of the manifest store layout.
const (
	LabelStore          = "c2pa"
	LabelAssertionStore = "c2pa.assertions"
	LabelClaim          = "c2pa.claim"
	LabelSignature      = "c2pa.signature"
)

const selfJUMBF = "self#jumbf="

// HashedURI references an assertion box together with the SHA-256 of its
// payload.
type HashedURI struct {
	URL  string `cbor:"url" json:"url"`
	Hash []byte `cbor:"hash" json:"hash"`
}

// Claim is the signed statement that binds all assertions.
type Claim struct {
	ClaimGenerator     string          `cbor:"claim_generator" json:"claim_generator"`
	ClaimGeneratorInfo []GeneratorInfo `cbor:"claim_generator_info,omitempty" json:"claim_generator_info,omitempty"`
	Signature          string          `cbor:"signature" json:"signature"`
	Assertions         []HashedURI     `cbor:"assertions" json:"assertions"`
	Format             string          `cbor:"dc:format" json:"dc:format"`
	InstanceID         string          `cbor:"instanceID" json:"instanceID"`
	Title              string          `cbor:"dc:title,omitempty" json:"dc:title,omitempty"`
	Alg                string          `cbor:"alg" json:"alg"`
}

func assertionURL(label string) string {
	return selfJUMBF + LabelAssertionStore + "/" + label
}

func labelFromURL(url string) (string, error) {
	label, ok := strings.CutPrefix(url, selfJUMBF+LabelAssertionStore+"/")
	if !ok || label == "" {
		return "", fmt.Errorf("manifest: unsupported assertion reference %q", url)
	}
	return label, nil
}

func assertionBox(a *assertions.Assertion) *jumbf.Box {
	if a.Format == assertions.JSON {
		return jumbf.NewSuperBox(jumbf.UUIDJSON, a.Label, jumbf.NewContentBox(jumbf.TypeJSON, a.Data))
	}
	return jumbf.NewSuperBox(jumbf.UUIDCBOR, a.Label, jumbf.NewContentBox(jumbf.TypeCBOR, a.Data))
}

func hashBox(b *jumbf.Box) ([]byte, error) {
	payload, err := b.Payload()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(payload)
	return sum[:], nil
}

// layout fixes the identifiers of one signing run.
type layout struct {
	label      string
	instanceID string
	format     string
}

// buildStore encodes the manifest store: assertion boxes, the claim over
// their hashes and the COSE signature over the claim.
func (m *Manifest) buildStore(ctx context.Context, l layout, list []*assertions.Assertion, signer signing.Signer) ([]byte, error) {
	boxes := make([]*jumbf.Box, 0, len(list))
	refs := make([]HashedURI, 0, len(list))
	for _, a := range list {
		box := assertionBox(a)
		sum, err := hashBox(box)
		if err != nil {
			return nil, fmt.Errorf("manifest: encode %s: %w", a.Label, err)
		}
		boxes = append(boxes, box)
		refs = append(refs, HashedURI{URL: assertionURL(a.Label), Hash: sum})
	}

	claim := Claim{
		ClaimGenerator:     m.claimGenerator,
		ClaimGeneratorInfo: m.generatorInfo,
		Signature:          selfJUMBF + LabelSignature,
		Assertions:         refs,
		Format:             l.format,
		InstanceID:         l.instanceID,
		Title:              m.title,
		Alg:                "sha256",
	}
	claimBytes, err := codec.Marshal(claim)
	if err != nil {
		return nil, fmt.Errorf("manifest: encode claim: %w", err)
	}
	sig, err := cose.Sign(ctx, signer, claimBytes)
	if err != nil {
		return nil, err
	}

	store := jumbf.NewSuperBox(jumbf.UUIDManifestStore, LabelStore,
		jumbf.NewSuperBox(jumbf.UUIDManifest, l.label,
			jumbf.NewSuperBox(jumbf.UUIDAssertionStore, LabelAssertionStore, boxes...),
			jumbf.NewSuperBox(jumbf.UUIDClaim, LabelClaim, jumbf.NewContentBox(jumbf.TypeCBOR, claimBytes)),
			jumbf.NewSuperBox(jumbf.UUIDSignature, LabelSignature, jumbf.NewContentBox(jumbf.TypeCBOR, sig)),
		),
	)
	return store.Marshal()
}
