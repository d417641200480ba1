package view

import (
	"encoding/binary"
	"testing"
)

func TestHostOrderResolvesToCanonicalOrder(t *testing.T) {
	ho := HostOrder()
	if ho != binary.ByteOrder(binary.LittleEndian) && ho != binary.ByteOrder(binary.BigEndian) {
		t.Fatalf("host order is not canonical: %v", ho)
	}

	// Host order must agree with how the platform lays out words.
	var native [4]byte
	binary.NativeEndian.PutUint32(native[:], 0xDEADBEEF)
	if got := ho.Uint32(native[:]); got != 0xDEADBEEF {
		t.Fatalf("host order disagrees with native layout: %#08x", got)
	}
}

func TestNilOrderDefaultsToBigEndian(t *testing.T) {
	if got := byteOrder(nil); got != binary.ByteOrder(binary.BigEndian) {
		t.Fatalf("nil order should default to big-endian, got %v", got)
	}
	if got := byteOrder(binary.LittleEndian); got != binary.ByteOrder(binary.LittleEndian) {
		t.Fatalf("explicit order should pass through, got %v", got)
	}
}
