package segment

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// Heap stores segment data in a process-local byte slice.
type Heap struct {
	data []byte
}

// NewHeap allocates a zeroed heap segment of the requested size.
// A size of zero is legal and produces an empty, attached segment.
func NewHeap(size int) (*Heap, error) {
	if size < 0 {
		return nil, errors.New("segment size must not be negative")
	}
	return &Heap{data: make([]byte, size)}, nil
}

// FromBytes adopts b as the segment's storage without copying, so
// writes through the segment alias the caller's slice.
func FromBytes(b []byte) *Heap {
	if b == nil {
		b = make([]byte, 0)
	}
	return &Heap{data: b}
}

// Detach releases the storage reference. Further byte access fails
// with ErrDetached and ByteLength reports zero. Detaching twice is a
// no-op.
func (h *Heap) Detach() {
	h.data = nil
}

func (h *Heap) ByteLength() int {
	if h == nil {
		return 0
	}
	return len(h.data)
}

func (h *Heap) Detached() bool {
	return h == nil || h.data == nil
}

func (h *Heap) ReadAt(off int, dst []byte) error {
	if h.Detached() {
		return ErrDetached
	}
	if err := checkRange(off, len(dst), len(h.data)); err != nil {
		return err
	}
	copy(dst, h.data[off:off+len(dst)])
	return nil
}

func (h *Heap) WriteAt(off int, src []byte) error {
	if h.Detached() {
		return ErrDetached
	}
	if err := checkRange(off, len(src), len(h.data)); err != nil {
		return err
	}
	copy(h.data[off:off+len(src)], src)
	return nil
}

func (h *Heap) AtomicLoadUint32(off int) (uint32, error) {
	ptr, err := h.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32((*uint32)(ptr)), nil
}

func (h *Heap) AtomicStoreUint32(off int, v uint32) error {
	ptr, err := h.ptrAt(off)
	if err != nil {
		return err
	}
	atomic.StoreUint32((*uint32)(ptr), v)
	return nil
}

func (h *Heap) AtomicAddUint32(off int, delta uint32) (uint32, error) {
	ptr, err := h.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.AddUint32((*uint32)(ptr), delta), nil
}

func (h *Heap) ptrAt(off int) (unsafe.Pointer, error) {
	if h.Detached() {
		return nil, ErrDetached
	}
	if err := checkRange(off, 4, len(h.data)); err != nil {
		return nil, err
	}
	if off%4 != 0 {
		return nil, ErrMisaligned
	}
	return unsafe.Pointer(&h.data[off]), nil
}
