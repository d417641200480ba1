package view

import (
	"errors"
	"fmt"
)

// The two classification roots. Every failure of every exported
// operation wraps exactly one of them: ErrType for a wrong kind of
// thing (no segment, detached storage, a value that is not a big
// integer), ErrRange for a value outside an allowed numeric range
// (offsets, lengths, indexes, access bounds). Callers dispatch with
// errors.Is.
var (
	ErrType  = errors.New("type error")
	ErrRange = errors.New("range error")
)

var (
	ErrNoSegment   = fmt.Errorf("%w: not a segment", ErrType)
	ErrDetached    = fmt.Errorf("%w: segment is detached", ErrType)
	ErrNoBigInt    = fmt.Errorf("%w: value is not a big integer", ErrType)
	ErrBadOffset   = fmt.Errorf("%w: invalid offset", ErrRange)
	ErrBadLength   = fmt.Errorf("%w: invalid length", ErrRange)
	ErrBadIndex    = fmt.Errorf("%w: invalid index", ErrRange)
	ErrOutOfBounds = fmt.Errorf("%w: access out of bounds", ErrRange)
)
