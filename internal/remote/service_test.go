package remote

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmxmxh/memview/layout"
	"github.com/nmxmxh/memview/segment"
	"github.com/nmxmxh/memview/testutil"
)

func newTestService(t *testing.T) (*Service, *segment.Heap) {
	t.Helper()
	seg := testutil.NewSegmentBuilder(HeaderSize + 64).Build()
	svc, err := NewService(seg)
	require.NoError(t, err)
	return svc, seg
}

func TestServicePokePeek(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	poke := svc.Handle(ctx, &Packet{
		Op:     OpPoke,
		Kind:   layout.Uint32,
		Offset: 0,
		Bits:   math.Float64bits(0x01020304),
	})
	require.Equal(t, StatusOK, poke.Status, poke.Error)
	assert.Equal(t, uint32(1), poke.Epoch)

	peek := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint32, Offset: 0})
	require.Equal(t, StatusOK, peek.Status, peek.Error)
	assert.Equal(t, float64(0x01020304), math.Float64frombits(peek.Bits))

	// Same bytes, opposite order.
	le := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint32, Offset: 0, LittleEndian: true})
	require.Equal(t, StatusOK, le.Status, le.Error)
	assert.Equal(t, float64(0x04030201), math.Float64frombits(le.Bits))

	b0 := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint8, Offset: 0})
	require.Equal(t, StatusOK, b0.Status, b0.Error)
	assert.Equal(t, float64(0x01), math.Float64frombits(b0.Bits))
}

func TestServiceBigKinds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// -1 stored signed reads back as all 64 bits set unsigned.
	poke := svc.Handle(ctx, &Packet{Op: OpPoke, Kind: layout.Int64, Offset: 8, Bits: math.MaxUint64})
	require.Equal(t, StatusOK, poke.Status, poke.Error)

	peek := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint64, Offset: 8})
	require.Equal(t, StatusOK, peek.Status, peek.Error)
	assert.Equal(t, uint64(math.MaxUint64), peek.Bits)
}

func TestServiceErrors(t *testing.T) {
	svc, seg := newTestService(t)
	ctx := context.Background()

	oob := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint32, Offset: 61})
	assert.Equal(t, StatusError, oob.Status)
	assert.Contains(t, oob.Error, "range error")

	huge := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint8, Offset: 1 << 60})
	assert.Equal(t, StatusError, huge.Status)

	unknown := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Kind(42), Offset: 0})
	assert.Equal(t, StatusError, unknown.Status)

	badOp := svc.Handle(ctx, &Packet{Op: Op(9)})
	assert.Equal(t, StatusError, badOp.Status)

	seg.Detach()
	detached := svc.Handle(ctx, &Packet{Op: OpPeek, Kind: layout.Uint8, Offset: 0})
	assert.Equal(t, StatusError, detached.Status)
	assert.Contains(t, detached.Error, "type error")
}

func TestServiceWatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// A poke from another goroutine wakes the watch.
	done := make(chan *Packet, 1)
	go func() {
		done <- svc.Handle(ctx, &Packet{Op: OpWatch, Bits: 0})
	}()

	time.Sleep(10 * time.Millisecond)
	poke := svc.Handle(ctx, &Packet{Op: OpPoke, Kind: layout.Uint8, Offset: 0, Bits: math.Float64bits(1)})
	require.Equal(t, StatusOK, poke.Status, poke.Error)

	select {
	case resp := <-done:
		require.Equal(t, StatusOK, resp.Status, resp.Error)
		assert.Equal(t, uint32(1), resp.Epoch)
	case <-time.After(2 * time.Second):
		t.Fatal("watch never woke")
	}

	// Cancellation aborts a watch that nothing satisfies.
	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	resp := svc.Handle(cancelled, &Packet{Op: OpWatch, Bits: 1})
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "deadline")
}
