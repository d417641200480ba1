// Package view implements typed, bounds-checked access to byte
// segments: fixed-width integers, IEEE floats, and 64-bit big-integer
// kinds read and written at arbitrary byte offsets with explicit byte
// order. A view holds a window onto a segment whose lifetime it does
// not control; the segment's liveness and length are re-checked on
// every access, never cached, because detachment can happen between
// any two calls.
package view

import (
	"errors"
	"fmt"

	"github.com/nmxmxh/memview/segment"
)

// View is a fixed window [ByteOffset, ByteOffset+ByteLength) onto a
// segment. The fields are immutable after construction and may go
// stale: if the segment detaches later, accesses fail but the
// recorded offset and length remain readable.
type View struct {
	seg        segment.Segment
	byteOffset int
	byteLength int
}

// New builds a view from byteOffset to the segment's current end.
func New(seg segment.Segment, byteOffset int) (*View, error) {
	return construct(seg, byteOffset, 0, false)
}

// NewWithLength builds a view over exactly byteLength bytes starting
// at byteOffset.
func NewWithLength(seg segment.Segment, byteOffset, byteLength int) (*View, error) {
	return construct(seg, byteOffset, byteLength, true)
}

// Construction validates against the segment's length at this moment
// only. The governing design skipped its detachment re-check between
// length conversion and finalization; here the conversions are pure,
// so the single up-front liveness check is equivalent.
func construct(seg segment.Segment, off, length int, explicit bool) (*View, error) {
	if seg == nil {
		return nil, ErrNoSegment
	}
	if seg.Detached() {
		return nil, ErrDetached
	}
	segLen := seg.ByteLength()
	if off < 0 || off > segLen {
		return nil, fmt.Errorf("%w: offset %d outside segment of %d bytes", ErrBadOffset, off, segLen)
	}
	if !explicit {
		length = segLen - off
	} else {
		if length < 0 {
			return nil, fmt.Errorf("%w: length %d is negative", ErrBadLength, length)
		}
		if uint64(off)+uint64(length) > uint64(segLen) {
			return nil, fmt.Errorf("%w: offset %d + length %d outside segment of %d bytes", ErrBadLength, off, length, segLen)
		}
	}
	return &View{seg: seg, byteOffset: off, byteLength: length}, nil
}

// ByteOffset reports the window start fixed at construction.
func (v *View) ByteOffset() int {
	return v.byteOffset
}

// ByteLength reports the window size fixed at construction. It keeps
// answering after the segment detaches.
func (v *View) ByteLength() int {
	return v.byteLength
}

// Segment returns the viewed segment.
func (v *View) Segment() segment.Segment {
	return v.seg
}

// load copies size bytes at idx into dst after the per-call
// validation sequence: index, liveness, bounds, in that order.
func (v *View) load(idx int, dst []byte) error {
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrBadIndex, idx)
	}
	if v.seg.Detached() {
		return ErrDetached
	}
	// Both conditions: the sum past the view end, or the sum wrapping
	// around. With int inputs the wrap cannot fire, it stays anyway so
	// the guard does not depend on the caller's integer width.
	end := uint64(idx) + uint64(len(dst))
	if end > uint64(v.byteLength) || end < uint64(idx) {
		return fmt.Errorf("%w: index %d width %d in view of %d bytes", ErrOutOfBounds, idx, len(dst), v.byteLength)
	}
	if err := v.seg.ReadAt(v.byteOffset+idx, dst); err != nil {
		return mapSegmentError(err)
	}
	return nil
}

// store is the write half of load, identical validation.
func (v *View) store(idx int, src []byte) error {
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrBadIndex, idx)
	}
	if v.seg.Detached() {
		return ErrDetached
	}
	end := uint64(idx) + uint64(len(src))
	if end > uint64(v.byteLength) || end < uint64(idx) {
		return fmt.Errorf("%w: index %d width %d in view of %d bytes", ErrOutOfBounds, idx, len(src), v.byteLength)
	}
	if err := v.seg.WriteAt(v.byteOffset+idx, src); err != nil {
		return mapSegmentError(err)
	}
	return nil
}

// mapSegmentError keeps the two-root taxonomy intact for segment
// failures that slip past the up-front checks (a segment mutated out
// of contract between check and copy).
func mapSegmentError(err error) error {
	switch {
	case errors.Is(err, segment.ErrDetached):
		return ErrDetached
	case errors.Is(err, segment.ErrOutOfBounds):
		return ErrOutOfBounds
	default:
		return fmt.Errorf("%w: %v", ErrType, err)
	}
}
