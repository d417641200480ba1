//go:build !js || !wasm

package segment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"unsafe"
)

// Shared maps a file for cross-process access. Detachment unmaps the
// region, so other processes holding the same mapping are unaffected.
type Shared struct {
	path string
	file *os.File
	data []byte
	size int
}

// SharedOptions configures shared segment creation/opening.
type SharedOptions struct {
	Path   string
	Size   int
	Create bool
}

// DefaultSharedPath returns the default shared segment path.
func DefaultSharedPath() string {
	if _, err := os.Stat("/dev/shm"); err == nil {
		return "/dev/shm/memview_seg"
	}
	return filepath.Join(os.TempDir(), "memview_seg")
}

// AttachShared opens or creates a file-backed shared segment.
func AttachShared(opts SharedOptions) (*Shared, error) {
	if opts.Path == "" {
		return nil, errors.New("shared segment path required")
	}
	if opts.Size < 0 {
		return nil, errors.New("shared segment size must not be negative")
	}

	path := filepath.Clean(opts.Path)
	flags := os.O_RDWR
	if opts.Create {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open shared segment file: %w", err)
	}

	if opts.Create {
		if opts.Size == 0 {
			_ = file.Close()
			return nil, errors.New("shared segment size required when creating")
		}
		if err := file.Truncate(int64(opts.Size)); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("truncate shared segment file: %w", err)
		}
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat shared segment file: %w", err)
	}
	if info.Size() == 0 {
		_ = file.Close()
		return nil, errors.New("shared segment file has zero size")
	}
	size := int(info.Size())

	data, err := syscall.Mmap(int(file.Fd()), 0, size, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap shared segment file: %w", err)
	}

	return &Shared{
		path: path,
		file: file,
		data: data,
		size: size,
	}, nil
}

// Path reports the backing file path.
func (s *Shared) Path() string {
	return s.path
}

func (s *Shared) ByteLength() int {
	if s.Detached() {
		return 0
	}
	return s.size
}

func (s *Shared) Detached() bool {
	return s == nil || s.data == nil
}

func (s *Shared) ReadAt(off int, dst []byte) error {
	if s.Detached() {
		return ErrDetached
	}
	if err := checkRange(off, len(dst), s.size); err != nil {
		return err
	}
	copy(dst, s.data[off:off+len(dst)])
	return nil
}

func (s *Shared) WriteAt(off int, src []byte) error {
	if s.Detached() {
		return ErrDetached
	}
	if err := checkRange(off, len(src), s.size); err != nil {
		return err
	}
	copy(s.data[off:off+len(src)], src)
	return nil
}

func (s *Shared) AtomicLoadUint32(off int) (uint32, error) {
	ptr, err := s.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32((*uint32)(ptr)), nil
}

func (s *Shared) AtomicStoreUint32(off int, v uint32) error {
	ptr, err := s.ptrAt(off)
	if err != nil {
		return err
	}
	atomic.StoreUint32((*uint32)(ptr), v)
	return nil
}

func (s *Shared) AtomicAddUint32(off int, delta uint32) (uint32, error) {
	ptr, err := s.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.AddUint32((*uint32)(ptr), delta), nil
}

// Close unmaps the region and closes the backing file. The segment is
// detached afterward; the file itself is left in place for other
// processes.
func (s *Shared) Close() error {
	var err error
	if s.data != nil {
		if unmapErr := syscall.Munmap(s.data); unmapErr != nil {
			err = unmapErr
		}
		s.data = nil
	}
	if s.file != nil {
		if closeErr := s.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.file = nil
	}
	return err
}

func (s *Shared) ptrAt(off int) (unsafe.Pointer, error) {
	if s.Detached() {
		return nil, ErrDetached
	}
	if err := checkRange(off, 4, s.size); err != nil {
		return nil, err
	}
	if off%4 != 0 {
		return nil, ErrMisaligned
	}
	return unsafe.Pointer(&s.data[off]), nil
}
