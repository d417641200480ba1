package remote

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/memview/layout"
)

func TestPacketRoundTrip(t *testing.T) {
	in := &Packet{
		Op:           OpPoke,
		Kind:         layout.Float64,
		Offset:       40,
		LittleEndian: true,
		Bits:         0x4045000000000000, // 42.0
		Status:       StatusError,
		Error:        "range error: access out of bounds",
		Payload:      []byte{1, 2, 3},
		Epoch:        7,
	}

	out, err := Decode(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPacketZeroValue(t *testing.T) {
	in := &Packet{}
	encoded := in.Encode()
	assert.Empty(t, encoded)

	out, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPacketTruncated(t *testing.T) {
	full := (&Packet{Op: OpPeek, Offset: 300, Bits: 99}).Encode()
	for cut := 1; cut < len(full); cut++ {
		if _, err := Decode(full[:cut]); err == nil {
			// Some prefixes happen to end on a field boundary and
			// decode to a partial packet; that is legal proto. A cut
			// inside a field must fail, which the fixed64 tail
			// guarantees for the last 8 positions.
			if cut > len(full)-8 {
				t.Fatalf("truncation at %d of %d decoded cleanly", cut, len(full))
			}
		}
	}
}

func TestPacketSkipsUnknownFields(t *testing.T) {
	b := (&Packet{Op: OpWatch, Bits: 12}).Encode()
	// A future field this version does not know.
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("later extension"))
	b = protowire.AppendTag(b, 101, protowire.VarintType)
	b = protowire.AppendVarint(b, 5)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, OpWatch, out.Op)
	assert.Equal(t, uint64(12), out.Bits)
}
