// Package peripheral implements the MCU side of the protocol: an
// event-driven dispatch loop that decodes each inbound frame, invokes
// the bound action and has the response frame ready before the host
// begins its read phase.
package peripheral

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/quadrover/i2clink/pkg/protocol"
)

// State tracks the dispatch loop position within one transaction.
type State int

// Dispatch states.
const (
	StateIdle State = iota
	StateReceiving
	StateDispatching
	StateResponding
)

// Device is the peripheral-side dispatch loop with its memory-mapped
// buffers: the command buffer fills from host writes and the response
// buffer backs host reads. Between RECEIVING and RESPONDING both
// buffers are owned exclusively by the dispatch path.
type Device struct {
	actions map[protocol.Command]Action

	mu    sync.Mutex
	state State
	buf   []byte
	rsp   [protocol.FrameSize]byte

	rxCount  uint64
	errCount uint64
}

// NewDevice creates a device dispatching to actions. Use MotorActions
// to bind the standard vocabulary to a Motors instance.
func NewDevice(actions map[protocol.Command]Action) *Device {
	d := &Device{actions: actions}
	// ACK in the response buffer before the first transaction
	copy(d.rsp[:], protocol.Response{Status: protocol.StatusOK}.Encode())
	return d
}

// State returns the current dispatch state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stats returns the transaction and error counters.
func (d *Device) Stats() (rx, errs uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxCount, d.errCount
}

// HandleWrite implements bus.Port. It services one host write event:
// the response buffer is cleared first so a too-early host read never
// returns the previous transaction as current, then bytes are buffered
// and every complete frame is dispatched with its response encoded
// before returning. Every completed frame produces exactly one
// response, valid or not; when one write carries several frames the
// response buffer holds the last one.
func (d *Device) HandleWrite(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rsp = [protocol.FrameSize]byte{}
	d.state = StateReceiving
	d.buf = append(d.buf, data...)

	for len(d.buf) >= protocol.FrameSize {
		frame := make([]byte, protocol.FrameSize)
		copy(frame, d.buf)
		d.buf = append(d.buf[:0], d.buf[protocol.FrameSize:]...)

		d.state = StateDispatching
		rsp := d.dispatch(frame)
		d.state = StateResponding
		copy(d.rsp[:], rsp.Encode())
		d.state = StateIdle
		d.rxCount++
	}
}

// ReadResponse implements bus.Port.
func (d *Device) ReadResponse(n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.rsp) {
		n = len(d.rsp)
	}
	return append([]byte(nil), d.rsp[:n]...)
}

func (d *Device) dispatch(frame []byte) protocol.Response {
	req, err := protocol.DecodeRequest(frame)
	if err != nil {
		d.errCount++
		glog.Warningf("request rejected: %v", err)
		var opErr *protocol.UnknownOpcodeError
		if errors.As(err, &opErr) {
			return protocol.Response{Status: protocol.StatusErrUnknownCommand}
		}
		return protocol.Response{Status: protocol.StatusErrBadCRC}
	}

	spec, ok := protocol.SpecOf(req.Command)
	if !ok {
		d.errCount++
		return protocol.Response{Status: protocol.StatusErrUnknownCommand}
	}
	if err := spec.ValidateArgs(req.Speeds); err != nil {
		d.errCount++
		glog.Warningf("%s rejected: %v", req.Command, err)
		return protocol.Response{Status: protocol.StatusErrRange}
	}

	action := d.actions[req.Command]
	if action == nil {
		d.errCount++
		return protocol.Response{Status: protocol.StatusErrUnknownCommand}
	}
	out, err := action.Invoke(req.Speeds)
	if err != nil {
		d.errCount++
		glog.V(1).Infof("%s failed: %v", req.Command, err)
		return protocol.Response{Status: domainStatus(err)}
	}
	if glog.V(2) {
		glog.Infof("%s -> %s %v", req.Command, spec.OK, out)
	}
	return protocol.Response{Status: spec.OK, Speeds: out}
}

// domainStatus translates an action error into its response status.
// Unrecognized failures map to ERROR_FAULT, never to a success status.
func domainStatus(err error) protocol.Status {
	var rangeErr *protocol.RangeError
	switch {
	case errors.Is(err, ErrBusy):
		return protocol.StatusErrBusy
	case errors.Is(err, ErrDisabled):
		return protocol.StatusErrDisabled
	case errors.As(err, &rangeErr):
		return protocol.StatusErrRange
	default:
		return protocol.StatusErrFault
	}
}

// Run implements framework.Runnable. Dispatch itself is event-driven
// via HandleWrite; Run only keeps the device alive and reports
// counters until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if glog.V(2) {
				rx, errs := d.Stats()
				glog.Infof("device alive: %d/%d err/rx", errs, rx)
			}
		}
	}
}

// Name implements framework.Named.
func (d *Device) Name() string {
	return "device"
}
