package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opencontainers/go-digest"

	"github.com/guardianproject/simple-c2pa-go/blob"
)

// Blob is a blob.ReadOnlyBlob that is stored in a fs.FS.
// It delegates all meta-operations to the underlying filesystem.
type Blob struct {
	fileSystem fs.FS
	path       string

	mediaTypeOnce sync.Once
	mediaType     string
}

var (
	_ blob.ReadOnlyBlob   = (*Blob)(nil)
	_ blob.SizeAware      = (*Blob)(nil)
	_ blob.DigestAware    = (*Blob)(nil)
	_ blob.MediaTypeAware = (*Blob)(nil)
)

// NewFileBlob creates a new Blob from an underlying fs.FS.
func NewFileBlob(fs fs.FS, path string) *Blob {
	return &Blob{
		path:       path,
		fileSystem: fs,
	}
}

// GetBlobFromOSPath returns a read-only blob for a path on the operating system file system.
func GetBlobFromOSPath(path string) (*Blob, error) {
	path = filepath.Clean(path)
	rofs, err := NewFS(filepath.Dir(path), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem while trying to access %v: %w", path, err)
	}
	return NewFileBlob(rofs, filepath.Base(path)), nil
}

func (f *Blob) ReadCloser() (io.ReadCloser, error) {
	file, err := f.fileSystem.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file %q: %w", f.path, err)
	}
	return file, nil
}

func (f *Blob) Size() int64 {
	fi, err := fs.Stat(f.fileSystem, f.path)
	if err != nil {
		return blob.SizeUnknown
	}
	return fi.Size()
}

func (f *Blob) Digest() (string, bool) {
	data, err := f.ReadCloser()
	if err != nil {
		return "", false
	}
	defer func() {
		_ = data.Close()
	}()
	d, err := digest.FromReader(data)
	if err != nil {
		return "", false
	}
	return d.String(), true
}

// MediaType detects the media type from the file content on first use.
func (f *Blob) MediaType() (string, bool) {
	f.mediaTypeOnce.Do(func() {
		data, err := f.ReadCloser()
		if err != nil {
			return
		}
		defer func() {
			_ = data.Close()
		}()
		if mt, err := mimetype.DetectReader(data); err == nil {
			f.mediaType = mt.String()
		}
	})
	return f.mediaType, f.mediaType != ""
}
