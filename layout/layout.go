// Package layout describes named typed fields at fixed offsets inside
// a segment and binds them to checked view access. It replaces ad-hoc
// offset constants with a declared, validated schema.
package layout

import (
	"encoding/binary"
	"fmt"
)

// Kind enumerates the ten accessor kinds a field can carry.
type Kind uint8

const (
	Int8 Kind = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
	Int64
	Uint64
)

// Size returns the field width in bytes, 0 for an unknown kind.
func (k Kind) Size() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field is one named value at a fixed offset. A nil Order means the
// default, most-significant byte first.
type Field struct {
	Name   string
	Offset int
	Kind   Kind
	Order  binary.ByteOrder
}

// End returns the first byte past the field.
func (f Field) End() int {
	return f.Offset + f.Kind.Size()
}

// Layout is an ordered collection of fields. Add does not validate;
// call Validate (or Bind, which validates) once the schema is
// complete.
type Layout struct {
	fields []Field
	byName map[string]int
}

func New() *Layout {
	return &Layout{byName: make(map[string]int)}
}

// Add appends a field and returns the layout for chaining.
func (l *Layout) Add(f Field) *Layout {
	l.fields = append(l.fields, f)
	return l
}

// Fields returns the declared fields in declaration order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Size returns the first byte past the furthest field.
func (l *Layout) Size() int {
	end := 0
	for _, f := range l.fields {
		if f.End() > end {
			end = f.End()
		}
	}
	return end
}

// Validate checks every field: known kind, non-empty unique name,
// non-negative offset, natural alignment, and no overlapping pairs.
func (l *Layout) Validate() error {
	l.byName = make(map[string]int, len(l.fields))
	for i, f := range l.fields {
		if f.Name == "" {
			return &LayoutError{Code: "UNNAMED_FIELD", Message: fmt.Sprintf("field %d has no name", i)}
		}
		if f.Kind.Size() == 0 {
			return &LayoutError{Code: "UNKNOWN_KIND", Message: "field " + f.Name + " has an unknown kind"}
		}
		if f.Offset < 0 {
			return &LayoutError{Code: "NEGATIVE_OFFSET", Message: "field " + f.Name + " has a negative offset"}
		}
		if f.Offset%f.Kind.Size() != 0 {
			return &LayoutError{Code: "MISALIGNED_FIELD", Message: fmt.Sprintf("field %s at %d is not %d-byte aligned", f.Name, f.Offset, f.Kind.Size())}
		}
		if prev, dup := l.byName[f.Name]; dup {
			return &LayoutError{Code: "DUPLICATE_FIELD", Message: fmt.Sprintf("field %s declared at %d and %d", f.Name, l.fields[prev].Offset, f.Offset)}
		}
		l.byName[f.Name] = i
	}

	// Check for overlaps
	for i := 0; i < len(l.fields); i++ {
		for j := i + 1; j < len(l.fields); j++ {
			f1, f2 := l.fields[i], l.fields[j]
			if f1.Offset < f2.End() && f1.End() > f2.Offset {
				return &LayoutError{Code: "FIELD_OVERLAP", Message: "field " + f1.Name + " overlaps with " + f2.Name}
			}
		}
	}
	return nil
}

// FieldAt returns the field containing the given byte offset.
func (l *Layout) FieldAt(off int) (*Field, error) {
	for i := range l.fields {
		f := l.fields[i]
		if off >= f.Offset && off < f.End() {
			return &f, nil
		}
	}
	return nil, &LayoutError{Code: "INVALID_OFFSET", Message: fmt.Sprintf("offset %d does not belong to any field", off)}
}

// LayoutError represents a schema or lookup error.
type LayoutError struct {
	Code    string
	Message string
}

func (e *LayoutError) Error() string {
	return e.Code + ": " + e.Message
}

// AlignOffset rounds an offset up to the given power-of-two alignment.
func AlignOffset(offset, alignment int) int {
	return (offset + alignment - 1) & ^(alignment - 1)
}
