// Package wasm adapts WASM linear memory to the segment contract and
// runs guest modules against it. The adapter is how views reach into
// a live instance's memory; the executor is the round trip proving the
// two compose.
package wasm

import (
	"sync/atomic"
	"unsafe"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/nmxmxh/memview/segment"
)

// Memory presents a wasmer linear memory as a segment. The backing
// slice is re-fetched from the instance on every access because a
// guest-side grow can move the storage; nothing is cached across
// calls.
type Memory struct {
	mem *wasmer.Memory
}

// Wrap adapts mem. A nil memory yields an already-detached segment.
func Wrap(mem *wasmer.Memory) *Memory {
	return &Memory{mem: mem}
}

// Detach drops the memory reference. One-way and local to the
// adapter; the instance's memory itself is untouched.
func (m *Memory) Detach() {
	m.mem = nil
}

func (m *Memory) ByteLength() int {
	if m.Detached() {
		return 0
	}
	return int(m.mem.DataSize())
}

func (m *Memory) Detached() bool {
	return m == nil || m.mem == nil
}

func (m *Memory) ReadAt(off int, dst []byte) error {
	if m.Detached() {
		return segment.ErrDetached
	}
	data := m.mem.Data()
	if err := checkRange(off, len(dst), len(data)); err != nil {
		return err
	}
	copy(dst, data[off:off+len(dst)])
	return nil
}

func (m *Memory) WriteAt(off int, src []byte) error {
	if m.Detached() {
		return segment.ErrDetached
	}
	data := m.mem.Data()
	if err := checkRange(off, len(src), len(data)); err != nil {
		return err
	}
	copy(data[off:off+len(src)], src)
	return nil
}

func (m *Memory) AtomicLoadUint32(off int) (uint32, error) {
	ptr, err := m.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32((*uint32)(ptr)), nil
}

func (m *Memory) AtomicStoreUint32(off int, v uint32) error {
	ptr, err := m.ptrAt(off)
	if err != nil {
		return err
	}
	atomic.StoreUint32((*uint32)(ptr), v)
	return nil
}

func (m *Memory) AtomicAddUint32(off int, delta uint32) (uint32, error) {
	ptr, err := m.ptrAt(off)
	if err != nil {
		return 0, err
	}
	return atomic.AddUint32((*uint32)(ptr), delta), nil
}

func (m *Memory) ptrAt(off int) (unsafe.Pointer, error) {
	if m.Detached() {
		return nil, segment.ErrDetached
	}
	data := m.mem.Data()
	if err := checkRange(off, 4, len(data)); err != nil {
		return nil, err
	}
	if off%4 != 0 {
		return nil, segment.ErrMisaligned
	}
	return unsafe.Pointer(&data[off]), nil
}

// checkRange mirrors the segment-side bounds guard: off negative, or
// off+n past the end, or the sum wrapping, all fail.
func checkRange(off, n, length int) error {
	if off < 0 {
		return segment.ErrOutOfBounds
	}
	end := uint64(off) + uint64(n)
	if end > uint64(length) || end < uint64(off) {
		return segment.ErrOutOfBounds
	}
	return nil
}
