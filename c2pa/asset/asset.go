// Package asset places manifest stores into media containers and finds
// them again.
package asset

import (
	"errors"
	"fmt"

	"github.com/guardianproject/simple-c2pa-go/c2pa/assertions"
)

// Common errors for callers to test.
var (
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrNoManifest        = errors.New("asset contains no manifest store")
	ErrMalformed         = errors.New("malformed asset")
)

// Handler embeds JUMBF manifest stores into one container format.
type Handler interface {
	// MediaType is the media type handled, e.g. "image/jpeg".
	MediaType() string
	// Remove returns data without any embedded manifest store.
	Remove(data []byte) ([]byte, error)
	// Embed inserts store into data, which must not contain a manifest
	// store, and reports the byte range the inserted store occupies.
	Embed(data, store []byte) ([]byte, assertions.Exclusion, error)
	// Extract returns the embedded manifest store.
	Extract(data []byte) ([]byte, error)
}

var handlers = map[string]Handler{
	jpegMediaType: jpegHandler{},
	pngMediaType:  pngHandler{},
}

// ForMediaType returns the handler for mediaType.
func ForMediaType(mediaType string) (Handler, error) {
	h, ok := handlers[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
	}
	return h, nil
}

// SupportedMediaTypes lists the media types with an embedding handler.
func SupportedMediaTypes() []string {
	return []string{jpegMediaType, pngMediaType}
}
