// Package jumbf encodes and decodes JPEG universal metadata box format
// (ISO/IEC 19566-5) boxes as used by C2PA manifest stores.
//
// A super box ("jumb") starts with a description box ("jumd") carrying a
// content type UUID and a label, followed by child boxes. Content boxes
// ("cbor", "json", ...) carry opaque payloads.
package jumbf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Box types.
const (
	TypeSuperBox    = "jumb"
	TypeDescription = "jumd"
	TypeCBOR        = "cbor"
	TypeJSON        = "json"
)

// HeaderSize is the size of LBox and TBox.
const HeaderSize = 8

// description toggles: requestable, label present
const toggles = 0x03

// c2paUUID builds the C2PA content type UUIDs, which share the suffix
// 0011-0010-8000-00AA00389B71 and start with the four character code.
func c2paUUID(fourCC string) uuid.UUID {
	return uuid.Must(uuid.Parse(fmt.Sprintf("%x-0011-0010-8000-00aa00389b71", fourCC)))
}

// Content type UUIDs of C2PA super boxes.
var (
	UUIDManifestStore  = c2paUUID("c2pa")
	UUIDManifest       = c2paUUID("c2ma")
	UUIDAssertionStore = c2paUUID("c2as")
	UUIDClaim          = c2paUUID("c2cl")
	UUIDSignature      = c2paUUID("c2cs")
	UUIDCBOR           = c2paUUID("cbor")
	UUIDJSON           = c2paUUID("json")
)

// Common errors for callers to test.
var (
	ErrTruncated   = errors.New("jumbf: truncated box")
	ErrNotSuperBox = errors.New("jumbf: not a super box")
	ErrNotFound    = errors.New("jumbf: box not found")
)

// Box is either a super box (Type == TypeSuperBox) or a content box.
type Box struct {
	Type string

	// super box fields
	ContentType uuid.UUID
	Label       string
	Children    []*Box

	// content box payload
	Data []byte

	// Raw is the payload as found by Parse; nil for boxes built in memory.
	Raw []byte
}

// NewSuperBox creates a labeled super box.
func NewSuperBox(contentType uuid.UUID, label string, children ...*Box) *Box {
	return &Box{Type: TypeSuperBox, ContentType: contentType, Label: label, Children: children}
}

// NewContentBox creates a content box of boxType.
func NewContentBox(boxType string, data []byte) *Box {
	return &Box{Type: boxType, Data: data}
}

// IsSuperBox reports whether b is a "jumb" box.
func (b *Box) IsSuperBox() bool {
	return b.Type == TypeSuperBox
}

// Child returns the direct child super box with label.
func (b *Box) Child(label string) (*Box, error) {
	for _, c := range b.Children {
		if c.IsSuperBox() && c.Label == label {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %q", ErrNotFound, label, b.Label)
}

// Lookup resolves a slash separated label path such as
// "c2pa.assertions/c2pa.actions" relative to b.
func (b *Box) Lookup(path string) (*Box, error) {
	cur := b
	for _, label := range strings.Split(path, "/") {
		next, err := cur.Child(label)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Content returns the first content box of a super box.
func (b *Box) Content() (*Box, error) {
	for _, c := range b.Children {
		if !c.IsSuperBox() {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: content of %q", ErrNotFound, b.Label)
}

// Marshal encodes b including its header.
func (b *Box) Marshal() ([]byte, error) {
	payload, err := b.MarshalPayload()
	if err != nil {
		return nil, err
	}
	return appendBox(nil, b.Type, payload)
}

// Payload returns Raw when the box was parsed and MarshalPayload otherwise.
func (b *Box) Payload() ([]byte, error) {
	if b.Raw != nil {
		return b.Raw, nil
	}
	return b.MarshalPayload()
}

// MarshalPayload encodes the box content without the LBox/TBox header.
// For super boxes this is the description box followed by all children.
func (b *Box) MarshalPayload() ([]byte, error) {
	if !b.IsSuperBox() {
		return b.Data, nil
	}
	desc := make([]byte, 0, 16+1+len(b.Label)+1)
	desc = append(desc, b.ContentType[:]...)
	desc = append(desc, toggles)
	desc = append(desc, b.Label...)
	desc = append(desc, 0)

	out, err := appendBox(nil, TypeDescription, desc)
	if err != nil {
		return nil, err
	}
	for _, c := range b.Children {
		child, err := c.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, child...)
	}
	return out, nil
}

func appendBox(dst []byte, boxType string, payload []byte) ([]byte, error) {
	if len(boxType) != 4 {
		return nil, fmt.Errorf("jumbf: box type %q is not four characters", boxType)
	}
	size := uint64(HeaderSize) + uint64(len(payload))
	if size > 0xFFFFFFFF {
		return nil, fmt.Errorf("jumbf: box %q of %d bytes is too large", boxType, size)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(size))
	dst = append(dst, boxType...)
	return append(dst, payload...), nil
}

// Parse decodes a single box occupying all of data.
func Parse(data []byte) (*Box, error) {
	b, rest, err := parseBox(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("jumbf: %d trailing bytes after %q box", len(rest), b.Type)
	}
	return b, nil
}

// ParseHeader returns the declared size and type of the box at the start of data.
func ParseHeader(data []byte) (size uint32, boxType string, err error) {
	if len(data) < HeaderSize {
		return 0, "", ErrTruncated
	}
	size = binary.BigEndian.Uint32(data)
	if size < HeaderSize {
		// 0 (to end of file) and 1 (XLBox) are not used by manifest stores
		return 0, "", fmt.Errorf("jumbf: unsupported box size %d", size)
	}
	return size, string(data[4:8]), nil
}

func parseBox(data []byte) (*Box, []byte, error) {
	size, boxType, err := ParseHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if uint64(size) > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: %q declares %d bytes, %d available", ErrTruncated, boxType, size, len(data))
	}
	payload, rest := data[HeaderSize:size], data[size:]

	if boxType != TypeSuperBox {
		return &Box{Type: boxType, Data: payload, Raw: payload}, rest, nil
	}

	desc, children, err := parseBox(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("parse description: %w", err)
	}
	if desc.Type != TypeDescription {
		return nil, nil, fmt.Errorf("%w: first child is %q", ErrNotSuperBox, desc.Type)
	}
	b := &Box{Type: TypeSuperBox, Raw: payload}
	if err := b.parseDescription(desc.Data); err != nil {
		return nil, nil, err
	}
	for len(children) > 0 {
		var child *Box
		if child, children, err = parseBox(children); err != nil {
			return nil, nil, fmt.Errorf("parse child of %q: %w", b.Label, err)
		}
		b.Children = append(b.Children, child)
	}
	return b, rest, nil
}

func (b *Box) parseDescription(data []byte) error {
	if len(data) < 17 {
		return fmt.Errorf("%w: description", ErrTruncated)
	}
	copy(b.ContentType[:], data[:16])
	flags := data[16]
	if flags&0x02 == 0 {
		return nil
	}
	label := data[17:]
	end := 0
	for end < len(label) && label[end] != 0 {
		end++
	}
	if end == len(label) {
		return fmt.Errorf("jumbf: unterminated label")
	}
	b.Label = string(label[:end])
	return nil
}
