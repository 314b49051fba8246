// fsutil/mmap.go
package fsutil

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/orbistools/pkgforge/internal/utils/errors"
)

// MappedFile is a read-write memory mapping over a freshly created file of a
// fixed size. The mapping exposes the whole file as one byte slice so callers
// can partition it into disjoint regions for parallel writers.
type MappedFile struct {
	f    *os.File
	mmap mmap.MMap
}

// CreateMapped creates (or truncates) path at the given size and maps it.
func CreateMapped(path string, size int64) (*MappedFile, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: mapped file size %d", errors.ErrInvalidArgument, size)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errors.ErrFileWriteError, err)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", errors.ErrMapFailed, err)
	}
	return &MappedFile{f: f, mmap: m}, nil
}

// Bytes returns the mapped region.
func (m *MappedFile) Bytes() []byte {
	return m.mmap
}

// Flush writes mapped changes back to the file.
func (m *MappedFile) Flush() error {
	if err := m.mmap.Flush(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
	}
	return nil
}

// Close flushes, unmaps and closes the underlying file.
func (m *MappedFile) Close() error {
	flushErr := m.mmap.Flush()
	unmapErr := m.mmap.Unmap()
	closeErr := m.f.Close()
	for _, err := range []error{flushErr, unmapErr, closeErr} {
		if err != nil {
			return fmt.Errorf("%w: %v", errors.ErrIoFailure, err)
		}
	}
	return nil
}
