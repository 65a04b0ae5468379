package blob

import (
	"io"
)

// ReadOnlyBlob is a Binary Large Object that can only be read.
type ReadOnlyBlob interface {
	// ReadCloser returns a reader to incrementally access byte stream content.
	// It is the caller's responsibility to close the reader.
	//
	// ReadCloser MUST be safe for concurrent use and MUST return a new reader
	// starting at the beginning of the blob on every invocation.
	ReadCloser() (io.ReadCloser, error)
}

// SizeUnknown is returned by SizeAware when the size cannot be determined.
const SizeUnknown int64 = -1

// SizeAware is an interface that represents any arbitrary object that can be sized.
type SizeAware interface {
	// Size returns the blob size in bytes if known, SizeUnknown otherwise.
	Size() (size int64)
}

// DigestAware is an interface that represents any arbitrary object that can be digested.
type DigestAware interface {
	// Digest returns the blob digest in open-container format if known.
	Digest() (digest string, known bool)
}

// MediaTypeAware is an interface that represents any arbitrary object that is
// associated with a media type.
type MediaTypeAware interface {
	// MediaType returns the media type of the blob if known.
	MediaType() (mediaType string, known bool)
}
