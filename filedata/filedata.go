// Package filedata implements FileData, a handle to media or key material
// that is either held in memory or stored at a filesystem path and is
// resolved from one to the other lazily.
package filedata

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"

	"github.com/guardianproject/simple-c2pa-go/blob"
	"github.com/guardianproject/simple-c2pa-go/blob/filesystem"
	"github.com/guardianproject/simple-c2pa-go/c2paerr"
)

// DefaultFileName is used when bytes have to be materialized without a suggested name.
const DefaultFileName = "file"

// FileData is either an in-memory byte buffer or a filesystem path.
// It is safe for concurrent use. Digest and media type are computed once
// per handle.
type FileData struct {
	path     string
	data     []byte
	fileName string

	mu           sync.Mutex
	materialized string

	// guards the content metadata, GetPath reads it while holding mu
	metaMu    sync.Mutex
	digest    string
	mediaType string
}

var (
	_ blob.ReadOnlyBlob   = (*FileData)(nil)
	_ blob.SizeAware      = (*FileData)(nil)
	_ blob.DigestAware    = (*FileData)(nil)
	_ blob.MediaTypeAware = (*FileData)(nil)
)

// New creates a FileData. An empty path, nil data or empty fileName means
// the respective part is absent. fileName is only a suggestion used when
// bytes need to be written to a temporary file.
func New(path string, data []byte, fileName string) *FileData {
	return &FileData{path: path, data: data, fileName: fileName}
}

// FromPath creates a FileData backed by path.
func FromPath(path string) *FileData {
	return New(path, nil, filepath.Base(path))
}

// FromBytes creates a FileData backed by data.
func FromBytes(data []byte, fileName string) *FileData {
	if data == nil {
		data = []byte{}
	}
	return New("", data, fileName)
}

// FileName returns the suggested file name, falling back to the base of the path.
func (f *FileData) FileName() string {
	switch {
	case f.fileName != "":
		return f.fileName
	case f.path != "":
		return filepath.Base(f.path)
	default:
		return DefaultFileName
	}
}

// GetBytes returns the in-memory bytes if present, otherwise reads the path.
func (f *FileData) GetBytes() ([]byte, error) {
	if f.data != nil {
		return bytes.Clone(f.data), nil
	}
	if f.path != "" {
		b, err := filesystem.GetBlobFromOSPath(f.path)
		if err != nil {
			return nil, c2paerr.Failure(err)
		}
		data, err := blob.ReadAll(b)
		if err != nil {
			return nil, c2paerr.Failure(err)
		}
		return data, nil
	}
	return nil, c2paerr.Failure(c2paerr.ErrNoBytesOrPath)
}

// GetPath returns the path if present. Otherwise the bytes are written once
// into a fresh temporary directory and the path of that file is returned on
// this and every later call.
func (f *FileData) GetPath() (string, error) {
	if f.path != "" {
		return f.path, nil
	}
	if f.data == nil {
		return "", c2paerr.Failure(c2paerr.ErrNoBytesOrPath)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.materialized != "" {
		return f.materialized, nil
	}

	dir, err := os.MkdirTemp("", "simple-c2pa-*")
	if err != nil {
		return "", c2paerr.Failure(err)
	}
	path := filepath.Join(dir, filepath.Base(f.FileName()))
	if err := filesystem.CopyBlobToOSPath(f, path); err != nil {
		return "", c2paerr.Failure(fmt.Errorf("materializing %s: %w", f.FileName(), err))
	}
	f.materialized = path
	return path, nil
}

// HasPath reports whether the handle was created with a filesystem path.
func (f *FileData) HasPath() bool {
	return f.path != ""
}

// ReadCloser opens the content without copying in-memory data.
func (f *FileData) ReadCloser() (io.ReadCloser, error) {
	if f.data != nil {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	if f.path != "" {
		b, err := filesystem.GetBlobFromOSPath(f.path)
		if err != nil {
			return nil, c2paerr.Failure(err)
		}
		return b.ReadCloser()
	}
	return nil, c2paerr.Failure(c2paerr.ErrNoBytesOrPath)
}

func (f *FileData) Size() int64 {
	if f.data != nil {
		return int64(len(f.data))
	}
	if f.path != "" {
		fi, err := os.Stat(f.path)
		if err == nil {
			return fi.Size()
		}
	}
	return blob.SizeUnknown
}

func (f *FileData) Digest() (string, bool) {
	f.metaMu.Lock()
	defer f.metaMu.Unlock()
	if f.digest != "" {
		return f.digest, true
	}

	rc, err := f.ReadCloser()
	if err != nil {
		return "", false
	}
	defer func() {
		_ = rc.Close()
	}()
	d, err := digest.FromReader(rc)
	if err != nil {
		return "", false
	}
	f.digest = d.String()
	return f.digest, true
}

// MediaType detects the media type from the content.
func (f *FileData) MediaType() (string, bool) {
	f.metaMu.Lock()
	defer f.metaMu.Unlock()
	if f.mediaType != "" {
		return f.mediaType, true
	}

	rc, err := f.ReadCloser()
	if err != nil {
		return "", false
	}
	defer func() {
		_ = rc.Close()
	}()
	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", false
	}
	f.mediaType = mt.String()
	return f.mediaType, true
}

func (f *FileData) String() string {
	switch {
	case f.path != "":
		return f.path
	case f.data != nil:
		return fmt.Sprintf("%s (%d bytes in memory)", f.FileName(), len(f.data))
	default:
		return "<empty>"
	}
}
