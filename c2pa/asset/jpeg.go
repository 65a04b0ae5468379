package asset

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
	"github.com/guardianproject/simple-c2pa-go/c2pa/jumbf"
)

const jpegMediaType = "image/jpeg"

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerSOS    = 0xDA
	markerAPP11  = 0xEB
)

// APP11 JUMBF segment layout: marker(2) Lp(2) CI "JP"(2) En(2) Z(4) LBox(4) TBox(4) data.
const (
	app11Overhead  = 2 + 2 + 4 + jumbf.HeaderSize
	maxSegmentData = 0xFFFF - 2 - app11Overhead
	jpegBoxID      = 1
)

var jpegCI = []byte("JP")

type jpegHandler struct{}

func (jpegHandler) MediaType() string { return jpegMediaType }

type jpegSegment struct {
	marker byte
	start  int
	end    int
}

// segments lists the marker segments between SOI and SOS. The returned
// offset is where the entropy coded data (or EOI) starts.
func jpegSegments(data []byte) ([]jpegSegment, int, error) {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil, 0, fmt.Errorf("%w: missing JPEG SOI marker", ErrMalformed)
	}
	var segs []jpegSegment
	pos := 2
	for pos+1 < len(data) {
		if data[pos] != markerPrefix {
			return nil, 0, fmt.Errorf("%w: expected JPEG marker at %d", ErrMalformed, pos)
		}
		marker := data[pos+1]
		switch {
		case marker == markerPrefix:
			// fill byte
			pos++
			continue
		case marker == markerSOS || marker == markerEOI:
			return segs, pos, nil
		case marker >= 0xD0 && marker <= 0xD7, marker == 0x01:
			segs = append(segs, jpegSegment{marker: marker, start: pos, end: pos + 2})
			pos += 2
			continue
		}
		if pos+4 > len(data) {
			return nil, 0, fmt.Errorf("%w: truncated JPEG segment", ErrMalformed)
		}
		end := pos + 2 + int(binary.BigEndian.Uint16(data[pos+2:]))
		if end > len(data) {
			return nil, 0, fmt.Errorf("%w: JPEG segment exceeds file", ErrMalformed)
		}
		segs = append(segs, jpegSegment{marker: marker, start: pos, end: end})
		pos = end
	}
	return segs, len(data), nil
}

func isJUMBFSegment(data []byte, s jpegSegment) bool {
	if s.marker != markerAPP11 || s.end-s.start < 4+app11Overhead {
		return false
	}
	body := data[s.start+4 : s.end]
	return bytes.Equal(body[:2], jpegCI) && string(body[12:16]) == jumbf.TypeSuperBox
}

func (jpegHandler) Remove(data []byte) ([]byte, error) {
	segs, _, err := jpegSegments(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	pos := 0
	for _, s := range segs {
		if isJUMBFSegment(data, s) {
			out = append(out, data[pos:s.start]...)
			pos = s.end
		}
	}
	return append(out, data[pos:]...), nil
}

// Embed splits store into APP11 segments right after SOI. Every segment
// repeats the box header; the payload is spread over the segments.
func (jpegHandler) Embed(data, store []byte) ([]byte, assertions.Exclusion, error) {
	if _, _, err := jpegSegments(data); err != nil {
		return nil, assertions.Exclusion{}, err
	}
	if len(store) < jumbf.HeaderSize {
		return nil, assertions.Exclusion{}, fmt.Errorf("%w: manifest store too short", ErrMalformed)
	}
	header, payload := store[:jumbf.HeaderSize], store[jumbf.HeaderSize:]

	var segments []byte
	for seq := uint32(1); ; seq++ {
		n := min(len(payload), maxSegmentData)
		segments = append(segments, markerPrefix, markerAPP11)
		segments = binary.BigEndian.AppendUint16(segments, uint16(2+app11Overhead+n))
		segments = append(segments, jpegCI...)
		segments = binary.BigEndian.AppendUint16(segments, jpegBoxID)
		segments = binary.BigEndian.AppendUint32(segments, seq)
		segments = append(segments, header...)
		segments = append(segments, payload[:n]...)
		payload = payload[n:]
		if len(payload) == 0 {
			break
		}
	}

	out := make([]byte, 0, len(data)+len(segments))
	out = append(out, data[:2]...)
	out = append(out, segments...)
	out = append(out, data[2:]...)
	return out, assertions.Exclusion{Start: 2, Length: int64(len(segments))}, nil
}

func (jpegHandler) Extract(data []byte) ([]byte, error) {
	segs, _, err := jpegSegments(data)
	if err != nil {
		return nil, err
	}
	var store []byte
	for _, s := range segs {
		if !isJUMBFSegment(data, s) {
			continue
		}
		body := data[s.start+4 : s.end]
		if store == nil {
			store = append(store, body[8:16]...)
		}
		store = append(store, body[16:]...)
	}
	if store == nil {
		return nil, ErrNoManifest
	}
	return store, nil
}
