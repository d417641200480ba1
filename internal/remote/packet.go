// Package remote exposes one segment to peers over libp2p: peek and
// poke individual typed fields, watch the segment's epoch counter, and
// run WASM modules against the segment's bytes. The wire format is
// hand-assembled protobuf; there is no generated code in this tree.
package remote

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nmxmxh/memview/layout"
)

// Op selects what a request packet does.
type Op uint8

const (
	OpPeek  Op = 1
	OpPoke  Op = 2
	OpWatch Op = 3
	OpRun   Op = 4
)

// Status reports how the service answered.
type Status uint8

const (
	StatusOK    Status = 0
	StatusError Status = 1
)

// Packet is both the request and the response message. Bits carries
// the value in the loose numeric domain: IEEE-754 double bits for the
// eight number kinds, the raw 64-bit two's-complement pattern for the
// int64/uint64 kinds, and the last-seen epoch for a watch.
type Packet struct {
	Op           Op
	Kind         layout.Kind
	Offset       uint64
	LittleEndian bool
	Bits         uint64
	Status       Status
	Error        string
	Payload      []byte
	Epoch        uint32
}

// Proto field numbers. Never reuse a retired number.
const (
	fieldOp           = 1
	fieldKind         = 2
	fieldOffset       = 3
	fieldLittleEndian = 4
	fieldBits         = 5
	fieldStatus       = 6
	fieldError        = 7
	fieldPayload      = 8
	fieldEpoch        = 9
)

// Encode appends the packet's wire form, proto3 style: zero-valued
// fields are omitted.
func (p *Packet) Encode() []byte {
	var b []byte
	if p.Op != 0 {
		b = protowire.AppendTag(b, fieldOp, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Op))
	}
	if p.Kind != 0 {
		b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Kind))
	}
	if p.Offset != 0 {
		b = protowire.AppendTag(b, fieldOffset, protowire.VarintType)
		b = protowire.AppendVarint(b, p.Offset)
	}
	if p.LittleEndian {
		b = protowire.AppendTag(b, fieldLittleEndian, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if p.Bits != 0 {
		b = protowire.AppendTag(b, fieldBits, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, p.Bits)
	}
	if p.Status != 0 {
		b = protowire.AppendTag(b, fieldStatus, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Status))
	}
	if p.Error != "" {
		b = protowire.AppendTag(b, fieldError, protowire.BytesType)
		b = protowire.AppendString(b, p.Error)
	}
	if len(p.Payload) > 0 {
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Payload)
	}
	if p.Epoch != 0 {
		b = protowire.AppendTag(b, fieldEpoch, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Epoch))
	}
	return b
}

// Decode parses a packet. Unknown fields are skipped; truncated or
// malformed input is an error.
func Decode(data []byte) (*Packet, error) {
	p := &Packet{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldOp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad op: %w", protowire.ParseError(n))
			}
			p.Op = Op(v)
			data = data[n:]
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad kind: %w", protowire.ParseError(n))
			}
			p.Kind = layout.Kind(v)
			data = data[n:]
		case num == fieldOffset && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad offset: %w", protowire.ParseError(n))
			}
			p.Offset = v
			data = data[n:]
		case num == fieldLittleEndian && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad order flag: %w", protowire.ParseError(n))
			}
			p.LittleEndian = v != 0
			data = data[n:]
		case num == fieldBits && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return nil, fmt.Errorf("bad bits: %w", protowire.ParseError(n))
			}
			p.Bits = v
			data = data[n:]
		case num == fieldStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad status: %w", protowire.ParseError(n))
			}
			p.Status = Status(v)
			data = data[n:]
		case num == fieldError && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, fmt.Errorf("bad error text: %w", protowire.ParseError(n))
			}
			p.Error = v
			data = data[n:]
		case num == fieldPayload && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("bad payload: %w", protowire.ParseError(n))
			}
			p.Payload = append([]byte(nil), v...)
			data = data[n:]
		case num == fieldEpoch && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("bad epoch: %w", protowire.ParseError(n))
			}
			p.Epoch = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("bad field %d: %w", num, protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return p, nil
}
