package blob

import (
	"errors"
	"io"

	"github.com/opencontainers/go-digest"
)

// Copy copies the contents of a ReadOnlyBlob to dst.
//
// If src is SizeAware, exactly that many bytes are copied. If src is
// DigestAware, the content is verified against the reported digest while it
// is copied and a mismatch is returned as an error.
func Copy(dst io.Writer, src ReadOnlyBlob) (err error) {
	size := SizeUnknown
	if srcSizeAware, ok := src.(SizeAware); ok {
		size = srcSizeAware.Size()
	}

	data, err := src.ReadCloser()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, data.Close())
	}()

	reader := io.Reader(data)

	if digestAware, ok := src.(DigestAware); ok {
		if digRaw, known := digestAware.Digest(); known {
			var dig digest.Digest
			if dig, err = digest.Parse(digRaw); err != nil {
				return err
			}
			verifier := dig.Verifier()
			reader = io.TeeReader(reader, verifier)
			defer func() {
				if err == nil && !verifier.Verified() {
					err = errors.New("blob digest verification failed")
				}
			}()
		}
	}

	if size > SizeUnknown {
		_, err = io.CopyN(dst, reader, size)
	} else {
		_, err = io.Copy(dst, reader)
	}

	return err
}

// ReadAll reads the full content of a ReadOnlyBlob into memory.
func ReadAll(src ReadOnlyBlob) (_ []byte, err error) {
	data, err := src.ReadCloser()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, data.Close())
	}()
	return io.ReadAll(data)
}
