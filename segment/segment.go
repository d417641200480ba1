package segment

import "errors"

// Segment abstracts a contiguous byte region that views interpret.
// Implementations may be backed by the process heap, a memory-mapped
// file, or WASM linear memory. A segment can be detached by its owner
// at any point; detachment is one-way and every subsequent byte access
// fails.
type Segment interface {
	// ByteLength reports the current length in bytes, 0 once detached.
	ByteLength() int
	// Detached reports whether the backing storage has been released.
	Detached() bool
	ReadAt(off int, dst []byte) error
	WriteAt(off int, src []byte) error
	// Atomic word access in host byte order. Offsets must be 4-byte
	// aligned. These back the epoch counters; the view accessor path
	// never uses them.
	AtomicLoadUint32(off int) (uint32, error)
	AtomicStoreUint32(off int, v uint32) error
	AtomicAddUint32(off int, delta uint32) (uint32, error)
}

var ErrDetached = errors.New("segment is detached")
var ErrOutOfBounds = errors.New("offset out of bounds")
var ErrMisaligned = errors.New("offset is not 4-byte aligned")

// checkRange validates [off, off+n) against a segment of the given
// length. The sum is computed in uint64 so a huge off cannot wrap
// past the length check.
func checkRange(off, n, length int) error {
	if off < 0 {
		return ErrOutOfBounds
	}
	end := uint64(off) + uint64(n)
	if end > uint64(length) || end < uint64(off) {
		return ErrOutOfBounds
	}
	return nil
}
