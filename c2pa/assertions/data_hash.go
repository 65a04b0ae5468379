package assertions

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"
)

// LabelDataHash is the label of the hard binding between claim and asset.
const LabelDataHash = "c2pa.hash.data"

// Exclusion is a byte range of the asset that is not hashed, usually the
// range occupied by the manifest store itself.
type Exclusion struct {
	Start  int64 `cbor:"start" json:"start"`
	Length int64 `cbor:"length" json:"length"`
}

// DataHash binds a manifest to the bytes of its asset.
type DataHash struct {
	Exclusions []Exclusion `cbor:"exclusions,omitempty" json:"exclusions,omitempty"`
	Name       string      `cbor:"name" json:"name"`
	Alg        string      `cbor:"alg" json:"alg"`
	Hash       []byte      `cbor:"hash" json:"hash"`
	Pad        []byte      `cbor:"pad" json:"pad"`
}

// NewDataHash hashes asset with SHA-256, skipping the exclusions.
func NewDataHash(asset []byte, exclusions ...Exclusion) (*DataHash, error) {
	sum, err := hashExcluding(asset, exclusions)
	if err != nil {
		return nil, err
	}
	return &DataHash{
		Exclusions: exclusions,
		Name:       "jumbf manifest",
		Alg:        "sha256",
		Hash:       sum,
		Pad:        []byte{},
	}, nil
}

// Verify recomputes the hash over asset.
func (d *DataHash) Verify(asset []byte) error {
	if d.Alg != "" && d.Alg != "sha256" {
		return fmt.Errorf("unsupported data hash algorithm %q", d.Alg)
	}
	sum, err := hashExcluding(asset, d.Exclusions)
	if err != nil {
		return err
	}
	if !bytes.Equal(sum, d.Hash) {
		return fmt.Errorf("data hash mismatch")
	}
	return nil
}

func (*DataHash) Label() string { return LabelDataHash }

func (d *DataHash) Assertion() (*Assertion, error) {
	return EncodeCBOR(LabelDataHash, d)
}

func hashExcluding(asset []byte, exclusions []Exclusion) ([]byte, error) {
	sorted := append([]Exclusion(nil), exclusions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	h := sha256.New()
	var pos int64
	for _, e := range sorted {
		if e.Start < pos || e.Length < 0 || e.Start+e.Length > int64(len(asset)) {
			return nil, fmt.Errorf("exclusion [%d, +%d) out of range", e.Start, e.Length)
		}
		h.Write(asset[pos:e.Start])
		pos = e.Start + e.Length
	}
	h.Write(asset[pos:])
	return h.Sum(nil), nil
}
