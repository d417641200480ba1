package segment

import (
	"errors"
	"testing"
)

func TestHeapReadWrite(t *testing.T) {
	seg, err := NewHeap(64)
	if err != nil {
		t.Fatalf("new heap failed: %v", err)
	}

	data := []byte{1, 2, 3, 4, 5}
	if err := seg.WriteAt(8, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	read := make([]byte, len(data))
	if err := seg.ReadAt(8, read); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for i, v := range data {
		if read[i] != v {
			t.Fatalf("unexpected byte at %d: %d != %d", i, read[i], v)
		}
	}
}

func TestHeapBounds(t *testing.T) {
	seg, err := NewHeap(16)
	if err != nil {
		t.Fatalf("new heap failed: %v", err)
	}

	buf := make([]byte, 4)
	if err := seg.ReadAt(12, buf); err != nil {
		t.Fatalf("read at exact end failed: %v", err)
	}
	if err := seg.ReadAt(13, buf); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if err := seg.ReadAt(-1, buf); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for negative offset, got %v", err)
	}
	// A huge offset must not wrap past the length check.
	const huge = int(^uint(0) >> 1)
	if err := seg.WriteAt(huge, buf); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for huge offset, got %v", err)
	}
}

func TestHeapDetach(t *testing.T) {
	seg, err := NewHeap(32)
	if err != nil {
		t.Fatalf("new heap failed: %v", err)
	}

	seg.Detach()
	if !seg.Detached() {
		t.Fatal("segment should report detached")
	}
	if seg.ByteLength() != 0 {
		t.Fatalf("detached length should be 0, got %d", seg.ByteLength())
	}
	if err := seg.ReadAt(0, make([]byte, 1)); !errors.Is(err, ErrDetached) {
		t.Fatalf("expected detached error, got %v", err)
	}
	if err := seg.WriteAt(0, []byte{1}); !errors.Is(err, ErrDetached) {
		t.Fatalf("expected detached error, got %v", err)
	}
	if _, err := seg.AtomicLoadUint32(0); !errors.Is(err, ErrDetached) {
		t.Fatalf("expected detached error, got %v", err)
	}

	// Detaching twice stays detached.
	seg.Detach()
	if !seg.Detached() {
		t.Fatal("segment should stay detached")
	}
}

func TestHeapZeroLength(t *testing.T) {
	seg, err := NewHeap(0)
	if err != nil {
		t.Fatalf("new heap failed: %v", err)
	}
	if seg.Detached() {
		t.Fatal("empty segment must not report detached")
	}
	if seg.ByteLength() != 0 {
		t.Fatalf("expected length 0, got %d", seg.ByteLength())
	}
	if err := seg.ReadAt(0, make([]byte, 0)); err != nil {
		t.Fatalf("zero-length read failed: %v", err)
	}
	if err := seg.ReadAt(0, make([]byte, 1)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}

	if _, err := NewHeap(-1); err == nil {
		t.Fatal("negative size should fail")
	}
}

func TestFromBytesAliases(t *testing.T) {
	backing := []byte{0, 0, 0, 0}
	seg := FromBytes(backing)

	if err := seg.WriteAt(1, []byte{0xAB}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if backing[1] != 0xAB {
		t.Fatalf("write did not alias backing slice: %#x", backing[1])
	}

	backing[2] = 0xCD
	read := make([]byte, 1)
	if err := seg.ReadAt(2, read); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if read[0] != 0xCD {
		t.Fatalf("read did not observe backing slice: %#x", read[0])
	}
}

func TestHeapAtomic(t *testing.T) {
	seg, err := NewHeap(16)
	if err != nil {
		t.Fatalf("new heap failed: %v", err)
	}

	if err := seg.AtomicStoreUint32(4, 10); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	val, err := seg.AtomicLoadUint32(4)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if val != 10 {
		t.Fatalf("expected 10, got %d", val)
	}
	newVal, err := seg.AtomicAddUint32(4, 5)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if newVal != 15 {
		t.Fatalf("expected 15, got %d", newVal)
	}

	if _, err := seg.AtomicLoadUint32(2); !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected misaligned error, got %v", err)
	}
	if _, err := seg.AtomicLoadUint32(16); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}
