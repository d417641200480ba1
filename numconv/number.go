package numconv

import "math"

const two32 = 1 << 32

// ToUint32 reduces a double to an unsigned 32-bit integer: non-finite
// values map to 0, finite values truncate toward zero and wrap modulo
// 2^32. The remainder is taken in floating point (math.Mod is exact)
// so arbitrarily large doubles reduce without an implementation-defined
// float-to-int conversion.
func ToUint32(v float64) uint32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(v), two32)
	if m < 0 {
		m += two32
	}
	return uint32(m)
}

// ToInt32 is ToUint32 with the result reinterpreted as signed.
func ToInt32(v float64) int32 {
	return int32(ToUint32(v))
}

// The narrower integer kinds keep the low-order bits of the 32-bit wrap.

func ToUint16(v float64) uint16 { return uint16(ToUint32(v)) }

func ToInt16(v float64) int16 { return int16(ToInt32(v)) }

func ToUint8(v float64) uint8 { return uint8(ToUint32(v)) }

func ToInt8(v float64) int8 { return int8(ToInt32(v)) }

// ToFloat32 rounds to the nearest single-precision value, ties to
// even; out-of-range magnitudes become infinities. These are Go's
// conversion semantics, stated here because callers rely on them.
func ToFloat32(v float64) float32 {
	return float32(v)
}
