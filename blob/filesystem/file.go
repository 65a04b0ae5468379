package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/guardianproject/simple-c2pa-go/blob"
)

const DefaultFileIOBufferSize = 1 << 20 // 1 MiB

// ioBufPool is a pool of byte buffers reused for copying content into files.
var ioBufPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, DefaultFileIOBufferSize)
		return &buffer
	},
}

// CopyBlobToOSPath copies the content of a blob.ReadOnlyBlob to a local path.
// An existing file is truncated, a missing one is created with mode 0o600.
func CopyBlobToOSPath(src blob.ReadOnlyBlob, path string) (err error) {
	data, err := src.ReadCloser()
	if err != nil {
		return fmt.Errorf("failed to get blob data: %w", err)
	}
	defer func() {
		err = errors.Join(err, data.Close())
	}()

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open target file %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	buf := ioBufPool.Get().(*[]byte)
	defer ioBufPool.Put(buf)
	if _, err := io.CopyBuffer(file, data, *buf); err != nil {
		return fmt.Errorf("failed to copy blob data: %w", err)
	}

	return nil
}
