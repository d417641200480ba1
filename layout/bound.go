package layout

import (
	"math/big"

	"github.com/nmxmxh/memview/segment"
	"github.com/nmxmxh/memview/view"
)

// Bound resolves field names to typed view access over one segment.
type Bound struct {
	layout *Layout
	view   *view.View
}

// Bind validates the layout, checks that it fits the segment's
// current length, and returns a handle for field access. Liveness is
// still re-checked per access through the view, so a later detachment
// fails individual reads and writes, not the binding.
func (l *Layout) Bind(seg segment.Segment) (*Bound, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	v, err := view.New(seg, 0)
	if err != nil {
		return nil, err
	}
	if l.Size() > v.ByteLength() {
		return nil, &LayoutError{Code: "LAYOUT_TOO_LARGE", Message: "layout does not fit the segment"}
	}
	return &Bound{layout: l, view: v}, nil
}

// View exposes the underlying whole-segment view.
func (b *Bound) View() *view.View {
	return b.view
}

func (b *Bound) field(name string, kind Kind) (Field, error) {
	i, ok := b.layout.byName[name]
	if !ok {
		return Field{}, &LayoutError{Code: "UNKNOWN_FIELD", Message: "no field named " + name}
	}
	f := b.layout.fields[i]
	if f.Kind != kind {
		return Field{}, &LayoutError{Code: "KIND_MISMATCH", Message: "field " + name + " is " + f.Kind.String() + ", not " + kind.String()}
	}
	return f, nil
}

func (b *Bound) Uint32(name string) (uint32, error) {
	f, err := b.field(name, Uint32)
	if err != nil {
		return 0, err
	}
	return b.view.GetUint32(f.Offset, f.Order)
}

func (b *Bound) PutUint32(name string, val uint32) error {
	f, err := b.field(name, Uint32)
	if err != nil {
		return err
	}
	return b.view.SetUint32(f.Offset, float64(val), f.Order)
}

func (b *Bound) Int32(name string) (int32, error) {
	f, err := b.field(name, Int32)
	if err != nil {
		return 0, err
	}
	return b.view.GetInt32(f.Offset, f.Order)
}

func (b *Bound) PutInt32(name string, val int32) error {
	f, err := b.field(name, Int32)
	if err != nil {
		return err
	}
	return b.view.SetInt32(f.Offset, float64(val), f.Order)
}

func (b *Bound) Float64(name string) (float64, error) {
	f, err := b.field(name, Float64)
	if err != nil {
		return 0, err
	}
	return b.view.GetFloat64(f.Offset, f.Order)
}

func (b *Bound) PutFloat64(name string, val float64) error {
	f, err := b.field(name, Float64)
	if err != nil {
		return err
	}
	return b.view.SetFloat64(f.Offset, val, f.Order)
}

func (b *Bound) Int64(name string) (int64, error) {
	f, err := b.field(name, Int64)
	if err != nil {
		return 0, err
	}
	return b.view.GetInt64(f.Offset, f.Order)
}

func (b *Bound) PutInt64(name string, val int64) error {
	f, err := b.field(name, Int64)
	if err != nil {
		return err
	}
	return b.view.SetInt64(f.Offset, big.NewInt(val), f.Order)
}

func (b *Bound) Uint64(name string) (uint64, error) {
	f, err := b.field(name, Uint64)
	if err != nil {
		return 0, err
	}
	return b.view.GetUint64(f.Offset, f.Order)
}

func (b *Bound) PutUint64(name string, val uint64) error {
	f, err := b.field(name, Uint64)
	if err != nil {
		return err
	}
	return b.view.SetUint64(f.Offset, new(big.Int).SetUint64(val), f.Order)
}
