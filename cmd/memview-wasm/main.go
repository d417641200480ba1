//go:build js && wasm
// +build js,wasm

// memview-wasm exposes a heap segment and its view to the JS host:
// memviewInit, memviewGet, memviewSet, memviewInfo, memviewDetach.
// Loose JS numbers cross the boundary as float64 and go through the
// numconv protocols; 64-bit values travel as decimal strings because
// a double cannot carry them exactly.
package main

import (
	"encoding/binary"
	"math/big"
	"syscall/js"

	"github.com/nmxmxh/memview/layout"
	"github.com/nmxmxh/memview/numconv"
	"github.com/nmxmxh/memview/segment"
	"github.com/nmxmxh/memview/view"
)

var (
	seg *segment.Heap
	vw  *view.View
)

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"success": false, "error": msg})
}

func ok(fields map[string]interface{}) interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["success"] = true
	return js.ValueOf(fields)
}

func kindByName(name string) (layout.Kind, bool) {
	for k := layout.Int8; k <= layout.Uint64; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

func pickOrder(v js.Value) binary.ByteOrder {
	if v.Type() == js.TypeBoolean && v.Bool() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func jsInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing arguments: (size)")
	}
	size, err := numconv.ToIndex(args[0].Float())
	if err != nil {
		return fail(err.Error())
	}
	s, err := segment.NewHeap(size)
	if err != nil {
		return fail(err.Error())
	}
	v, err := view.New(s, 0)
	if err != nil {
		return fail(err.Error())
	}
	seg, vw = s, v
	return ok(map[string]interface{}{"byteLength": v.ByteLength()})
}

func jsInfo(this js.Value, args []js.Value) interface{} {
	if vw == nil {
		return fail("not initialized")
	}
	return ok(map[string]interface{}{
		"byteOffset": vw.ByteOffset(),
		"byteLength": vw.ByteLength(),
		"detached":   seg.Detached(),
	})
}

func jsDetach(this js.Value, args []js.Value) interface{} {
	if seg == nil {
		return fail("not initialized")
	}
	seg.Detach()
	return ok(nil)
}

func jsGet(this js.Value, args []js.Value) interface{} {
	if vw == nil {
		return fail("not initialized")
	}
	if len(args) < 2 {
		return fail("missing arguments: (kind, index, littleEndian?)")
	}
	kind, known := kindByName(args[0].String())
	if !known {
		return fail("unknown kind " + args[0].String())
	}
	idx, err := numconv.ToIndex(args[1].Float())
	if err != nil {
		return fail(err.Error())
	}
	order := binary.ByteOrder(binary.BigEndian)
	if len(args) > 2 {
		order = pickOrder(args[2])
	}

	switch kind {
	case layout.Int8:
		v, err := vw.GetInt8(idx)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Uint8:
		v, err := vw.GetUint8(idx)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Int16:
		v, err := vw.GetInt16(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Uint16:
		v, err := vw.GetUint16(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Int32:
		v, err := vw.GetInt32(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Uint32:
		v, err := vw.GetUint32(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Float32:
		v, err := vw.GetFloat32(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": float64(v)})
	case layout.Float64:
		v, err := vw.GetFloat64(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": v})
	case layout.Int64:
		v, err := vw.GetInt64(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": big.NewInt(v).String()})
	case layout.Uint64:
		v, err := vw.GetUint64(idx, order)
		if err != nil {
			return fail(err.Error())
		}
		return ok(map[string]interface{}{"value": new(big.Int).SetUint64(v).String()})
	}
	return fail("unreachable kind")
}

func jsSet(this js.Value, args []js.Value) interface{} {
	if vw == nil {
		return fail("not initialized")
	}
	if len(args) < 3 {
		return fail("missing arguments: (kind, index, value, littleEndian?)")
	}
	kind, known := kindByName(args[0].String())
	if !known {
		return fail("unknown kind " + args[0].String())
	}
	idx, err := numconv.ToIndex(args[1].Float())
	if err != nil {
		return fail(err.Error())
	}
	order := binary.ByteOrder(binary.BigEndian)
	if len(args) > 3 {
		order = pickOrder(args[3])
	}

	switch kind {
	case layout.Int64, layout.Uint64:
		val, valid := new(big.Int).SetString(args[2].String(), 10)
		if !valid {
			val = nil // the accessor reports the type error
		}
		if kind == layout.Int64 {
			err = vw.SetInt64(idx, val, order)
		} else {
			err = vw.SetUint64(idx, val, order)
		}
	default:
		val := args[2].Float()
		switch kind {
		case layout.Int8:
			err = vw.SetInt8(idx, val)
		case layout.Uint8:
			err = vw.SetUint8(idx, val)
		case layout.Int16:
			err = vw.SetInt16(idx, val, order)
		case layout.Uint16:
			err = vw.SetUint16(idx, val, order)
		case layout.Int32:
			err = vw.SetInt32(idx, val, order)
		case layout.Uint32:
			err = vw.SetUint32(idx, val, order)
		case layout.Float32:
			err = vw.SetFloat32(idx, val, order)
		case layout.Float64:
			err = vw.SetFloat64(idx, val, order)
		}
	}
	if err != nil {
		return fail(err.Error())
	}
	return ok(nil)
}

func main() {
	js.Global().Set("memviewInit", js.FuncOf(jsInit))
	js.Global().Set("memviewInfo", js.FuncOf(jsInfo))
	js.Global().Set("memviewDetach", js.FuncOf(jsDetach))
	js.Global().Set("memviewGet", js.FuncOf(jsGet))
	js.Global().Set("memviewSet", js.FuncOf(jsSet))

	select {} // stay alive for the host
}
