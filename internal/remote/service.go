package remote

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/nmxmxh/memview/epoch"
	"github.com/nmxmxh/memview/layout"
	"github.com/nmxmxh/memview/numconv"
	"github.com/nmxmxh/memview/segment"
	"github.com/nmxmxh/memview/utils"
	"github.com/nmxmxh/memview/view"
	"github.com/nmxmxh/memview/wasm"
)

// HeaderSize reserves the front of the segment for the epoch word.
// Packet offsets address the data window that starts after it.
const HeaderSize = 8

// Service executes packets against one segment: a view over the data
// window for peeks and pokes, the epoch counter in the header for
// watches and mutation signaling.
type Service struct {
	seg   segment.Segment
	view  *view.View
	epoch *epoch.Counter
	log   *logrus.Entry
}

// NewService builds the data view and the epoch counter over seg. The
// segment must be at least HeaderSize bytes.
func NewService(seg segment.Segment) (*Service, error) {
	v, err := view.New(seg, HeaderSize)
	if err != nil {
		return nil, utils.WrapError(err, "data view")
	}
	c, err := epoch.New(seg, 0)
	if err != nil {
		return nil, utils.WrapError(err, "epoch counter")
	}
	return &Service{
		seg:   seg,
		view:  v,
		epoch: c,
		log:   utils.ComponentLogger("remote"),
	}, nil
}

// View exposes the service's data window.
func (s *Service) View() *view.View {
	return s.view
}

// Epoch exposes the service's counter, shared waiter list included.
func (s *Service) Epoch() *epoch.Counter {
	return s.epoch.Reader()
}

// Handle executes one request and always produces a response packet;
// failures are reported in Status/Error rather than as Go errors, so
// the stream layer never has to invent a message.
func (s *Service) Handle(ctx context.Context, req *Packet) *Packet {
	resp := &Packet{Op: req.Op, Kind: req.Kind, Offset: req.Offset, LittleEndian: req.LittleEndian}
	var err error
	switch req.Op {
	case OpPeek:
		err = s.peek(req, resp)
	case OpPoke:
		err = s.poke(req, resp)
	case OpWatch:
		err = s.watch(ctx, req, resp)
	case OpRun:
		err = s.run(req, resp)
	default:
		err = fmt.Errorf("unknown op %d", req.Op)
	}
	if err != nil {
		resp.Status = StatusError
		resp.Error = err.Error()
		s.log.WithFields(logrus.Fields{"op": req.Op, "offset": req.Offset, "kind": req.Kind.String()}).
			WithError(err).Debug("request failed")
	}
	return resp
}

// index narrows a wire offset through the loose-value protocol; peers
// cannot be trusted to stay inside the safe integer range.
func index(off uint64) (int, error) {
	return numconv.ToIndex(float64(off))
}

func order(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (s *Service) peek(req, resp *Packet) error {
	idx, err := index(req.Offset)
	if err != nil {
		return err
	}
	o := order(req.LittleEndian)
	switch req.Kind {
	case layout.Int8:
		v, err := s.view.GetInt8(idx)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Uint8:
		v, err := s.view.GetUint8(idx)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Int16:
		v, err := s.view.GetInt16(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Uint16:
		v, err := s.view.GetUint16(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Int32:
		v, err := s.view.GetInt32(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Uint32:
		v, err := s.view.GetUint32(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Float32:
		v, err := s.view.GetFloat32(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(float64(v))
	case layout.Float64:
		v, err := s.view.GetFloat64(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = math.Float64bits(v)
	case layout.Int64:
		v, err := s.view.GetInt64(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = uint64(v)
	case layout.Uint64:
		v, err := s.view.GetUint64(idx, o)
		if err != nil {
			return err
		}
		resp.Bits = v
	default:
		return fmt.Errorf("unknown kind %d", req.Kind)
	}
	return nil
}

func (s *Service) poke(req, resp *Packet) error {
	idx, err := index(req.Offset)
	if err != nil {
		return err
	}
	o := order(req.LittleEndian)
	val := math.Float64frombits(req.Bits)
	switch req.Kind {
	case layout.Int8:
		err = s.view.SetInt8(idx, val)
	case layout.Uint8:
		err = s.view.SetUint8(idx, val)
	case layout.Int16:
		err = s.view.SetInt16(idx, val, o)
	case layout.Uint16:
		err = s.view.SetUint16(idx, val, o)
	case layout.Int32:
		err = s.view.SetInt32(idx, val, o)
	case layout.Uint32:
		err = s.view.SetUint32(idx, val, o)
	case layout.Float32:
		err = s.view.SetFloat32(idx, val, o)
	case layout.Float64:
		err = s.view.SetFloat64(idx, val, o)
	case layout.Int64:
		err = s.view.SetInt64(idx, big.NewInt(int64(req.Bits)), o)
	case layout.Uint64:
		err = s.view.SetUint64(idx, new(big.Int).SetUint64(req.Bits), o)
	default:
		err = fmt.Errorf("unknown kind %d", req.Kind)
	}
	if err != nil {
		return err
	}
	e, err := s.epoch.Increment()
	if err != nil {
		return utils.WrapError(err, "epoch increment")
	}
	resp.Epoch = e
	return nil
}

func (s *Service) watch(ctx context.Context, req, resp *Packet) error {
	e, err := s.epoch.Wait(ctx, uint32(req.Bits))
	if err != nil {
		return err
	}
	resp.Epoch = e
	return nil
}

// run executes the WASM module in the payload with input taken from
// the data window [Offset, Offset+Bits) and answers with the module's
// output.
func (s *Service) run(req, resp *Packet) error {
	idx, err := index(req.Offset)
	if err != nil {
		return err
	}
	n, err := numconv.ToIndex(float64(req.Bits))
	if err != nil {
		return err
	}
	input := make([]byte, n)
	for i := range input {
		b, err := s.view.GetUint8(idx + i)
		if err != nil {
			return err
		}
		input[i] = b
	}
	out, err := wasm.Execute(req.Payload, input)
	if err != nil {
		return utils.WrapError(err, "execute module")
	}
	resp.Payload = out
	return nil
}
