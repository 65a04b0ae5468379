// Package assertions contains the typed assertions of a manifest and their
// encoded form.
package assertions

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/guardianproject/simple-c2pa-go/c2pa/internal/codec"
)

// Format is the serialization of an assertion's content box.
type Format int

const (
	CBOR Format = iota
	JSON
)

func (f Format) String() string {
	switch f {
	case CBOR:
		return "cbor"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ErrInvalidJSON is returned for JSON assertions that do not parse.
var ErrInvalidJSON = errors.New("assertion content is not valid JSON")

// Assertion is an encoded assertion ready to be placed in the assertion store.
type Assertion struct {
	Label  string
	Format Format
	Data   []byte
}

// Typed is implemented by every assertion type of this package.
type Typed interface {
	Label() string
	Assertion() (*Assertion, error)
}

// EncodeCBOR encodes v as a CBOR assertion.
func EncodeCBOR(label string, v any) (*Assertion, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", label, err)
	}
	return &Assertion{Label: label, Format: CBOR, Data: data}, nil
}

// EncodeJSON encodes v as a JSON assertion in RFC 8785 canonical form.
func EncodeJSON(label string, v any) (*Assertion, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", label, err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", label, err)
	}
	return &Assertion{Label: label, Format: JSON, Data: canonical}, nil
}

// RawJSON wraps caller supplied JSON verbatim after checking it parses.
func RawJSON(label string, data []byte) (*Assertion, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: label %q", ErrInvalidJSON, label)
	}
	return &Assertion{Label: label, Format: JSON, Data: append([]byte(nil), data...)}, nil
}

// Decode unmarshals the content into v.
func (a *Assertion) Decode(v any) error {
	switch a.Format {
	case JSON:
		return json.Unmarshal(a.Data, v)
	default:
		return codec.Unmarshal(a.Data, v)
	}
}

// Value decodes the content into generic maps, slices and scalars.
func (a *Assertion) Value() (any, error) {
	var v any
	if err := a.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.Label, err)
	}
	return v, nil
}
