package numconv

import (
	"errors"
	"math"
	"math/big"
)

var ErrNoBigInt = errors.New("nil big integer")

var low64Mask = new(big.Int).SetUint64(math.MaxUint64)

// BigToUint64 takes the low 64 bits of the integer's two's-complement
// representation, so BigToUint64(-1) is MaxUint64 and values wider
// than 64 bits wrap. big.Int bit operations already use infinite
// two's-complement semantics, which makes the general case a mask.
func BigToUint64(x *big.Int) (uint64, error) {
	if x == nil {
		return 0, ErrNoBigInt
	}
	if x.IsUint64() {
		return x.Uint64(), nil
	}
	if x.IsInt64() {
		return uint64(x.Int64()), nil
	}
	return new(big.Int).And(x, low64Mask).Uint64(), nil
}

// BigToInt64 is BigToUint64 with the result reinterpreted as signed.
func BigToInt64(x *big.Int) (int64, error) {
	u, err := BigToUint64(x)
	return int64(u), err
}
