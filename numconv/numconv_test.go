package numconv

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestToIndex(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want int
		fail bool
	}{
		{"zero", 0, 0, false},
		{"negative zero", math.Copysign(0, -1), 0, false},
		{"nan", math.NaN(), 0, false},
		{"fraction", 1.9, 1, false},
		{"negative fraction", -0.9, 0, false},
		{"max safe", float64(MaxSafeIndex), MaxSafeIndex, false},
		{"negative", -1, 0, true},
		{"past max safe", float64(uint64(1) << 53), 0, true},
		{"positive inf", math.Inf(1), 0, true},
		{"negative inf", math.Inf(-1), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToIndex(tc.in)
			if tc.fail {
				if !errors.Is(err, ErrRange) {
					t.Fatalf("expected range error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ToIndex(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestToUint32(t *testing.T) {
	cases := []struct {
		in   float64
		want uint32
	}{
		{0, 0},
		{1, 1},
		{-1, 4294967295},
		{-1.5, 4294967295},
		{-3, 4294967293},
		{4294967296, 0},
		{-4294967296, 0},
		{4294967298, 2},
		{4294967297.9, 1},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{float64(uint64(1) << 53), 0},
		{float64(uint64(1)<<53 - 1), 4294967295},
	}
	for _, tc := range cases {
		if got := ToUint32(tc.in); got != tc.want {
			t.Fatalf("ToUint32(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToInt32(t *testing.T) {
	cases := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{-1, -1},
		{2147483647, 2147483647},
		{2147483648, -2147483648},
		{-2147483649, 2147483647},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := ToInt32(tc.in); got != tc.want {
			t.Fatalf("ToInt32(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNarrowKinds(t *testing.T) {
	if got := ToUint8(300); got != 44 {
		t.Fatalf("ToUint8(300) = %d, want 44", got)
	}
	if got := ToInt8(300); got != 44 {
		t.Fatalf("ToInt8(300) = %d, want 44", got)
	}
	if got := ToInt8(-1.5); got != -1 {
		t.Fatalf("ToInt8(-1.5) = %d, want -1", got)
	}
	if got := ToInt16(65541); got != 5 {
		t.Fatalf("ToInt16(65541) = %d, want 5", got)
	}
	if got := ToUint16(-1); got != 65535 {
		t.Fatalf("ToUint16(-1) = %d, want 65535", got)
	}
}

func TestToFloat32(t *testing.T) {
	// 1 + 2^-24 sits exactly between 1 and the next float32; the tie
	// goes to the even mantissa, which is 1.
	tie := 1 + math.Pow(2, -24)
	if bits := math.Float32bits(ToFloat32(tie)); bits != math.Float32bits(1.0) {
		t.Fatalf("tie did not round to even: %#08x", bits)
	}
	if bits := math.Float32bits(ToFloat32(0.1)); bits != 0x3DCCCCCD {
		t.Fatalf("ToFloat32(0.1) = %#08x, want 0x3DCCCCCD", bits)
	}
	if f := ToFloat32(1e308); !math.IsInf(float64(f), 1) {
		t.Fatalf("huge magnitude should overflow to +Inf, got %v", f)
	}
	if f := ToFloat32(math.NaN()); f == f {
		t.Fatal("NaN should stay NaN")
	}
}

func TestBigToUint64(t *testing.T) {
	shift := func(n uint) *big.Int { return new(big.Int).Lsh(big.NewInt(1), n) }
	cases := []struct {
		name string
		in   *big.Int
		want uint64
	}{
		{"zero", big.NewInt(0), 0},
		{"small", big.NewInt(5), 5},
		{"minus one", big.NewInt(-1), math.MaxUint64},
		{"minus two", big.NewInt(-2), math.MaxUint64 - 1},
		{"min int64", new(big.Int).Neg(shift(63)), 1 << 63},
		{"wraps at 64", shift(64), 0},
		{"wraps past 64", new(big.Int).Add(shift(64), big.NewInt(5)), 5},
		{"wide", new(big.Int).Add(shift(100), big.NewInt(7)), 7},
		{"wide negative", new(big.Int).Neg(new(big.Int).Add(shift(64), big.NewInt(1))), math.MaxUint64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BigToUint64(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}

	if _, err := BigToUint64(nil); !errors.Is(err, ErrNoBigInt) {
		t.Fatalf("expected ErrNoBigInt, got %v", err)
	}
}

func TestBigToInt64(t *testing.T) {
	got, err := BigToInt64(big.NewInt(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Fatalf("got %d, want -1", got)
	}
	if _, err := BigToInt64(nil); !errors.Is(err, ErrNoBigInt) {
		t.Fatalf("expected ErrNoBigInt, got %v", err)
	}
}
