package view

import "encoding/binary"

// hostOrder is resolved once at init; the platform's byte order cannot
// change at runtime, so nothing re-derives it per access.
var hostOrder = resolveHostOrder()

func resolveHostOrder() binary.ByteOrder {
	var probe [2]byte
	binary.NativeEndian.PutUint16(probe[:], 0x0102)
	if probe[0] == 0x02 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// HostOrder reports the platform byte order as one of the two
// canonical encoding/binary orders. Accessors take their order
// per call; host order matters for data that must line up with
// segment atomics and epoch counters, which operate natively.
func HostOrder() binary.ByteOrder {
	return hostOrder
}

// byteOrder normalizes the per-call order argument: nil selects the
// default, most-significant byte first. Decoding scratch bytes with
// the requested order is bit-identical to copying and conditionally
// reversing them when the request differs from host order.
func byteOrder(o binary.ByteOrder) binary.ByteOrder {
	if o == nil {
		return binary.BigEndian
	}
	return o
}
