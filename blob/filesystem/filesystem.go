package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrReadOnly = errors.New("read only file system")

// OpenFileFS is a filesystem that supports opening files with a specific flag and permission bitmask.
type OpenFileFS interface {
	OpenFile(name string, flag int, perm os.FileMode) (fs.File, error)
}

// RootFileSystem confines all access to a single directory tree through os.Root.
type RootFileSystem struct {
	root *os.Root
	// flag limits operations, e.g. os.O_RDONLY rejects writes.
	flag int
}

var (
	_ fs.FS        = (*RootFileSystem)(nil)
	_ fs.StatFS    = (*RootFileSystem)(nil)
	_ OpenFileFS   = (*RootFileSystem)(nil)
	_ fmt.Stringer = (*RootFileSystem)(nil)
)

// NewFS opens base as a RootFileSystem. If base does not exist it is only
// created when flag contains os.O_CREATE.
func NewFS(base string, flag int) (*RootFileSystem, error) {
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	fi, err := os.Stat(base)
	if os.IsNotExist(err) {
		if flag&os.O_CREATE == 0 {
			return nil, fmt.Errorf("path does not exist: %s", base)
		}
		if err = os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create path: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("unable to stat path: %w", err)
	}
	if fi != nil && !fi.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", base)
	}
	r, err := os.OpenRoot(base)
	if err != nil {
		return nil, fmt.Errorf("unable to open root on base: %w", err)
	}
	return &RootFileSystem{root: r, flag: flag}, nil
}

func (s *RootFileSystem) String() string {
	return s.root.Name()
}

func (s *RootFileSystem) Open(name string) (fs.File, error) {
	return s.OpenFile(name, os.O_RDONLY, 0)
}

func (s *RootFileSystem) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	if s.ReadOnly() && !isFlagReadOnly(flag) {
		return nil, ErrReadOnly
	}
	return s.root.OpenFile(name, flag, perm)
}

func (s *RootFileSystem) Stat(name string) (fs.FileInfo, error) {
	return s.root.Stat(name)
}

// ReadOnly returns true if the filesystem was opened without write access.
func (s *RootFileSystem) ReadOnly() bool {
	return isFlagReadOnly(s.flag)
}

// Close releases the underlying root.
func (s *RootFileSystem) Close() error {
	return s.root.Close()
}

// isFlagReadOnly returns true if the flag is neither O_WRONLY nor O_RDWR,
// because the default open mode is read only.
func isFlagReadOnly(flag int) bool {
	return flag&os.O_WRONLY == 0 && flag&os.O_RDWR == 0
}
