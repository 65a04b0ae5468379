// Package manifest assembles C2PA manifests: an ordered assertion store, a
// claim that hashes every assertion, and a COSE signature over the claim.
// Manifests are embedded into JPEG or PNG assets or written as a sidecar.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
)

// Common errors for callers to test.
var (
	ErrFinalized     = errors.New("manifest: already signed")
	ErrReservedLabel = errors.New("manifest: label is managed by the manifest")
)

// GeneratorInfo names a software component that produced the claim.
type GeneratorInfo struct {
	Name    string `cbor:"name" json:"name"`
	Version string `cbor:"version,omitempty" json:"version,omitempty"`
	Icon    string `cbor:"icon,omitempty" json:"icon,omitempty"`
}

// Manifest collects assertions until it is embedded. It is not safe for
// concurrent use.
type Manifest struct {
	claimGenerator string
	generatorInfo  []GeneratorInfo
	title          string
	format         string
	parent         *assertions.Ingredient
	store          *orderedmap.OrderedMap[string, *assertions.Assertion]
	sidecar        bool
	finalized      bool
}

// New creates an empty manifest whose claim names claimGenerator.
func New(claimGenerator string, info ...GeneratorInfo) *Manifest {
	return &Manifest{
		claimGenerator: claimGenerator,
		generatorInfo:  info,
		store:          orderedmap.New[string, *assertions.Assertion](),
	}
}

func (m *Manifest) ClaimGenerator() string { return m.claimGenerator }

// SetTitle sets dc:title of the claim. It defaults to the parent's title.
func (m *Manifest) SetTitle(title string) error {
	if m.finalized {
		return ErrFinalized
	}
	m.title = title
	return nil
}

// SetParent records the asset this manifest is created from.
func (m *Manifest) SetParent(parent *assertions.Ingredient) error {
	if m.finalized {
		return ErrFinalized
	}
	m.parent = parent
	if parent == nil {
		return nil
	}
	if m.title == "" {
		m.title = parent.Title
	}
	if m.format == "" {
		m.format = parent.Format
	}
	return nil
}

// Parent returns the parent ingredient or nil.
func (m *Manifest) Parent() *assertions.Ingredient { return m.parent }

// AddAssertion stores a typed assertion under its own label.
func (m *Manifest) AddAssertion(a assertions.Typed) error {
	encoded, err := a.Assertion()
	if err != nil {
		return err
	}
	return m.put(encoded)
}

// AddLabeledAssertion stores value as JSON under label. string, []byte and
// json.RawMessage values are JSON text taken verbatim; anything else is
// marshaled. A label that is already present is overwritten in place.
func (m *Manifest) AddLabeledAssertion(label string, value any) error {
	var (
		a   *assertions.Assertion
		err error
	)
	switch v := value.(type) {
	case []byte:
		a, err = assertions.RawJSON(label, v)
	case json.RawMessage:
		a, err = assertions.RawJSON(label, v)
	case string:
		a, err = assertions.RawJSON(label, []byte(v))
	default:
		a, err = assertions.EncodeJSON(label, v)
	}
	if err != nil {
		return err
	}
	return m.put(a)
}

// AddEncoded stores an already encoded assertion.
func (m *Manifest) AddEncoded(a *assertions.Assertion) error {
	return m.put(a)
}

func (m *Manifest) put(a *assertions.Assertion) error {
	if m.finalized {
		return ErrFinalized
	}
	switch a.Label {
	case assertions.LabelDataHash, assertions.LabelIngredient:
		return fmt.Errorf("%w: %q", ErrReservedLabel, a.Label)
	case "":
		return errors.New("manifest: empty assertion label")
	}
	m.store.Set(a.Label, a)
	return nil
}

// Assertion returns the assertion stored under label.
func (m *Manifest) Assertion(label string) (*assertions.Assertion, bool) {
	return m.store.Get(label)
}

// Assertions iterates the stored assertions in insertion order.
func (m *Manifest) Assertions() iter.Seq[*assertions.Assertion] {
	return func(yield func(*assertions.Assertion) bool) {
		for pair := m.store.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Value) {
				return
			}
		}
	}
}

// Len returns the number of stored assertions.
func (m *Manifest) Len() int { return m.store.Len() }

// SetSidecar selects a detached .c2pa manifest instead of embedding.
func (m *Manifest) SetSidecar(sidecar bool) error {
	if m.finalized {
		return ErrFinalized
	}
	m.sidecar = sidecar
	return nil
}

func (m *Manifest) Sidecar() bool { return m.sidecar }

// Finalized reports whether the manifest was embedded successfully.
func (m *Manifest) Finalized() bool { return m.finalized }
