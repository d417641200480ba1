// Package testutil builds segments with known contents for tests.
package testutil

import (
	"encoding/binary"

	"github.com/nmxmxh/memview/segment"
)

// SegmentBuilder assembles a byte image and hands it out as a heap
// segment. Writes are ordinary slice stores; validation is the
// production code's job, not the builder's.
type SegmentBuilder struct {
	data []byte
}

// NewSegmentBuilder starts a zeroed image of the given size.
func NewSegmentBuilder(size int) *SegmentBuilder {
	return &SegmentBuilder{data: make([]byte, size)}
}

// Fill sets every byte to b.
func (s *SegmentBuilder) Fill(b byte) *SegmentBuilder {
	for i := range s.data {
		s.data[i] = b
	}
	return s
}

// PutBytes copies raw bytes at off.
func (s *SegmentBuilder) PutBytes(off int, b []byte) *SegmentBuilder {
	copy(s.data[off:], b)
	return s
}

// PutUint16 stores v at off. A nil order means big-endian, matching
// the accessor default.
func (s *SegmentBuilder) PutUint16(off int, v uint16, order binary.ByteOrder) *SegmentBuilder {
	s.order(order).PutUint16(s.data[off:], v)
	return s
}

// PutUint32 stores v at off.
func (s *SegmentBuilder) PutUint32(off int, v uint32, order binary.ByteOrder) *SegmentBuilder {
	s.order(order).PutUint32(s.data[off:], v)
	return s
}

// PutUint64 stores v at off.
func (s *SegmentBuilder) PutUint64(off int, v uint64, order binary.ByteOrder) *SegmentBuilder {
	s.order(order).PutUint64(s.data[off:], v)
	return s
}

// Bytes returns the image itself, not a copy.
func (s *SegmentBuilder) Bytes() []byte {
	return s.data
}

// Build wraps the image in a heap segment. The segment aliases the
// builder's bytes, so later builder writes stay visible through it.
func (s *SegmentBuilder) Build() *segment.Heap {
	return segment.FromBytes(s.data)
}

func (s *SegmentBuilder) order(o binary.ByteOrder) binary.ByteOrder {
	if o == nil {
		return binary.BigEndian
	}
	return o
}
