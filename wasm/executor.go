package wasm

import (
	"errors"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/nmxmxh/memview/view"
)

// Guest contract: the module exports its linear memory as "memory"
// and a function `run(ptr, len i32) -> i64` whose result packs the
// output location as ptr<<32|len. Modules that export `alloc(len i32)
// -> i32` get their input staged through it; otherwise the input goes
// to inputBase.
const inputBase = 1 << 10

// Execute instantiates a module, stages input into its linear memory,
// calls run, and copies the output back out. All guest memory traffic
// goes through a view over the memory adapter, so the guest gets the
// same bounds and liveness discipline as every other segment.
func Execute(code, input []byte) ([]byte, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, fmt.Errorf("compile module: %w", err)
	}
	instance, err := wasmer.NewInstance(module, wasmer.NewImportObject())
	if err != nil {
		return nil, fmt.Errorf("instantiate module: %w", err)
	}
	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, fmt.Errorf("module exports no memory: %w", err)
	}
	run, err := instance.Exports.GetFunction("run")
	if err != nil {
		return nil, fmt.Errorf("module exports no run function: %w", err)
	}

	seg := Wrap(mem)
	base := inputBase
	if alloc, allocErr := instance.Exports.GetFunction("alloc"); allocErr == nil {
		raw, callErr := alloc(len(input))
		if callErr != nil {
			return nil, fmt.Errorf("alloc input: %w", callErr)
		}
		p, ok := raw.(int32)
		if !ok {
			return nil, errors.New("alloc returned a non-i32 value")
		}
		base = int(p)
	}

	v, err := view.New(seg, 0)
	if err != nil {
		return nil, err
	}
	for i, b := range input {
		if err := v.SetUint8(base+i, float64(b)); err != nil {
			return nil, fmt.Errorf("stage input byte %d: %w", i, err)
		}
	}

	raw, err := run(base, len(input))
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	packed, ok := raw.(int64)
	if !ok {
		return nil, errors.New("run returned a non-i64 value")
	}
	outPtr := int(uint32(uint64(packed) >> 32))
	outLen := int(uint32(uint64(packed)))

	// Re-view: run may have grown the memory, moving its end.
	v, err = view.New(seg, 0)
	if err != nil {
		return nil, err
	}
	out := make([]byte, outLen)
	for i := range out {
		b, err := v.GetUint8(outPtr + i)
		if err != nil {
			return nil, fmt.Errorf("read output byte %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
