package view

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/nmxmxh/memview/numconv"
)

// Reads interpret bytes starting at idx, relative to the view window.
// Multi-byte kinds take a byte order; nil means the default,
// most-significant byte first. Every call re-validates liveness and
// bounds against the segment's current state.

// GetInt8 reads the byte at idx as a signed 8-bit integer.
func (v *View) GetInt8(idx int) (int8, error) {
	var b [1]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// GetUint8 reads the byte at idx as an unsigned 8-bit integer.
func (v *View) GetUint8(idx int) (uint8, error) {
	var b [1]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetInt16 reads two bytes at idx as a signed 16-bit integer.
func (v *View) GetInt16(idx int, order binary.ByteOrder) (int16, error) {
	var b [2]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return int16(byteOrder(order).Uint16(b[:])), nil
}

// GetUint16 reads two bytes at idx as an unsigned 16-bit integer.
func (v *View) GetUint16(idx int, order binary.ByteOrder) (uint16, error) {
	var b [2]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return byteOrder(order).Uint16(b[:]), nil
}

// GetInt32 reads four bytes at idx as a signed 32-bit integer.
func (v *View) GetInt32(idx int, order binary.ByteOrder) (int32, error) {
	var b [4]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return int32(byteOrder(order).Uint32(b[:])), nil
}

// GetUint32 reads four bytes at idx as an unsigned 32-bit integer.
func (v *View) GetUint32(idx int, order binary.ByteOrder) (uint32, error) {
	var b [4]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return byteOrder(order).Uint32(b[:]), nil
}

// GetFloat32 reads four bytes at idx as an IEEE-754 single.
func (v *View) GetFloat32(idx int, order binary.ByteOrder) (float32, error) {
	var b [4]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(byteOrder(order).Uint32(b[:])), nil
}

// GetFloat64 reads eight bytes at idx as an IEEE-754 double.
func (v *View) GetFloat64(idx int, order binary.ByteOrder) (float64, error) {
	var b [8]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(byteOrder(order).Uint64(b[:])), nil
}

// GetInt64 reads eight bytes at idx as a signed 64-bit integer. The
// result is exact; no double rounding is involved.
func (v *View) GetInt64(idx int, order binary.ByteOrder) (int64, error) {
	var b [8]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return int64(byteOrder(order).Uint64(b[:])), nil
}

// GetUint64 reads eight bytes at idx as an unsigned 64-bit integer.
func (v *View) GetUint64(idx int, order binary.ByteOrder) (uint64, error) {
	var b [8]byte
	if err := v.load(idx, b[:]); err != nil {
		return 0, err
	}
	return byteOrder(order).Uint64(b[:]), nil
}

// Writes take values in the loose numeric domain handed across the
// script boundary: doubles for the number kinds, big integers for the
// 64-bit kinds. The value is coerced first and the liveness/bounds
// checks run after; that ordering is an observable contract (a bad
// value reports its own failure even when the segment is detached).

// SetInt8 wraps val modulo 2^32 and stores the low 8 bits at idx.
func (v *View) SetInt8(idx int, val float64) error {
	b := [1]byte{byte(numconv.ToInt8(val))}
	return v.store(idx, b[:])
}

// SetUint8 wraps val modulo 2^32 and stores the low 8 bits at idx.
func (v *View) SetUint8(idx int, val float64) error {
	b := [1]byte{numconv.ToUint8(val)}
	return v.store(idx, b[:])
}

// SetInt16 wraps val modulo 2^32 and stores the low 16 bits at idx.
func (v *View) SetInt16(idx int, val float64, order binary.ByteOrder) error {
	var b [2]byte
	byteOrder(order).PutUint16(b[:], uint16(numconv.ToInt16(val)))
	return v.store(idx, b[:])
}

// SetUint16 wraps val modulo 2^32 and stores the low 16 bits at idx.
func (v *View) SetUint16(idx int, val float64, order binary.ByteOrder) error {
	var b [2]byte
	byteOrder(order).PutUint16(b[:], numconv.ToUint16(val))
	return v.store(idx, b[:])
}

// SetInt32 wraps val modulo 2^32 and stores it at idx.
func (v *View) SetInt32(idx int, val float64, order binary.ByteOrder) error {
	var b [4]byte
	byteOrder(order).PutUint32(b[:], uint32(numconv.ToInt32(val)))
	return v.store(idx, b[:])
}

// SetUint32 wraps val modulo 2^32 and stores it at idx.
func (v *View) SetUint32(idx int, val float64, order binary.ByteOrder) error {
	var b [4]byte
	byteOrder(order).PutUint32(b[:], numconv.ToUint32(val))
	return v.store(idx, b[:])
}

// SetFloat32 rounds val to the nearest single, ties to even, and
// stores it at idx.
func (v *View) SetFloat32(idx int, val float64, order binary.ByteOrder) error {
	var b [4]byte
	byteOrder(order).PutUint32(b[:], math.Float32bits(numconv.ToFloat32(val)))
	return v.store(idx, b[:])
}

// SetFloat64 stores val at idx unchanged.
func (v *View) SetFloat64(idx int, val float64, order binary.ByteOrder) error {
	var b [8]byte
	byteOrder(order).PutUint64(b[:], math.Float64bits(val))
	return v.store(idx, b[:])
}

// SetInt64 stores the low 64 bits of val's two's-complement
// representation at idx. The index validates before the value: a
// negative idx with a nil val reports the index, matching the
// script-level argument order.
func (v *View) SetInt64(idx int, val *big.Int, order binary.ByteOrder) error {
	if idx < 0 {
		return ErrBadIndex
	}
	u, err := numconv.BigToUint64(val)
	if err != nil {
		return ErrNoBigInt
	}
	var b [8]byte
	byteOrder(order).PutUint64(b[:], u)
	return v.store(idx, b[:])
}

// SetUint64 stores the low 64 bits of val's two's-complement
// representation at idx.
func (v *View) SetUint64(idx int, val *big.Int, order binary.ByteOrder) error {
	if idx < 0 {
		return ErrBadIndex
	}
	u, err := numconv.BigToUint64(val)
	if err != nil {
		return ErrNoBigInt
	}
	var b [8]byte
	byteOrder(order).PutUint64(b[:], u)
	return v.store(idx, b[:])
}
