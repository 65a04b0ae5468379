package asset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
)

const pngMediaType = "image/png"

const pngChunkType = "caBX"

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

type pngHandler struct{}

func (pngHandler) MediaType() string { return pngMediaType }

type pngChunk struct {
	typ   string
	start int
	end   int
}

func pngChunks(data []byte) ([]pngChunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("%w: missing PNG signature", ErrMalformed)
	}
	var chunks []pngChunk
	pos := len(pngSignature)
	for pos < len(data) {
		if pos+12 > len(data) {
			return nil, fmt.Errorf("%w: truncated PNG chunk", ErrMalformed)
		}
		end := pos + 12 + int(binary.BigEndian.Uint32(data[pos:]))
		if end > len(data) || end < pos {
			return nil, fmt.Errorf("%w: PNG chunk exceeds file", ErrMalformed)
		}
		chunks = append(chunks, pngChunk{typ: string(data[pos+4 : pos+8]), start: pos, end: end})
		pos = end
	}
	if len(chunks) == 0 || chunks[0].typ != "IHDR" {
		return nil, fmt.Errorf("%w: PNG does not start with IHDR", ErrMalformed)
	}
	return chunks, nil
}

func (pngHandler) Remove(data []byte) ([]byte, error) {
	chunks, err := pngChunks(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	pos := 0
	for _, c := range chunks {
		if c.typ == pngChunkType {
			out = append(out, data[pos:c.start]...)
			pos = c.end
		}
	}
	return append(out, data[pos:]...), nil
}

// Embed inserts a caBX chunk directly after IHDR.
func (pngHandler) Embed(data, store []byte) ([]byte, assertions.Exclusion, error) {
	chunks, err := pngChunks(data)
	if err != nil {
		return nil, assertions.Exclusion{}, err
	}
	if uint64(len(store)) > 0x7FFFFFFF {
		return nil, assertions.Exclusion{}, fmt.Errorf("%w: manifest store too large for a PNG chunk", ErrMalformed)
	}

	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(store)))
	chunk = append(chunk, pngChunkType...)
	chunk = append(chunk, store...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	at := chunks[0].end
	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:at]...)
	out = append(out, chunk...)
	out = append(out, data[at:]...)
	return out, assertions.Exclusion{Start: int64(at), Length: int64(len(chunk))}, nil
}

func (pngHandler) Extract(data []byte) ([]byte, error) {
	chunks, err := pngChunks(data)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if c.typ != pngChunkType {
			continue
		}
		body := data[c.start+8 : c.end-4]
		if crc32.ChecksumIEEE(data[c.start+4:c.end-4]) != binary.BigEndian.Uint32(data[c.end-4:]) {
			return nil, fmt.Errorf("%w: caBX chunk CRC mismatch", ErrMalformed)
		}
		return body, nil
	}
	return nil, ErrNoManifest
}
