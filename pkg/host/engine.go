// Package host implements the controller side of the protocol: a
// transaction engine that drives one write-then-read exchange at a
// time against the peripheral and validates the response.
package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/quadrover/i2clink/pkg/bus"
	"github.com/quadrover/i2clink/pkg/protocol"
)

// State tracks the engine position within one transaction.
type State int

// Transaction states. StateDone and StateFailed are terminal and
// mutually exclusive.
const (
	StateIdle State = iota
	StateSending
	StateWaiting
	StateReading
	StateValidating
	StateDone
	StateFailed
)

// DefaultTxDelay is the write-to-read settle delay applied when the
// config does not set one. The safe minimum is peripheral-specific and
// empirically tuned; this default comes from bench tuning against the
// reference MCU firmware.
const DefaultTxDelay = 700 * time.Microsecond

// Config carries the engine tunables. TxDelay exists because the
// peripheral's dispatch work is not guaranteed complete when the write
// finishes; reading too early yields stale or garbage bytes.
type Config struct {
	// Addr is the 7-bit peripheral address.
	Addr byte
	// TxDelay is the minimum delay between the write and read phases.
	TxDelay time.Duration
	// Delay, when set, re-reads the tuning input before every
	// transaction and overrides TxDelay.
	Delay DelayFunc
}

// Engine drives transactions over a Bus. One transaction runs at a
// time; the bus is exclusive.
type Engine struct {
	bus bus.Bus

	mu       sync.Mutex
	addr     byte
	txDelay  time.Duration
	delay    DelayFunc
	txCount  uint64
	errCount uint64
}

// Outcome is the terminal result of one transaction. Exactly one of
// Done or Failed holds; a failed transaction never carries stale data
// as if successful.
type Outcome struct {
	// State is StateDone or StateFailed.
	State State
	// Response is the decoded response. It is set when Done, and also
	// when the response frame decoded cleanly but carried an
	// error-class status (Cause is then a *protocol.StatusError).
	Response protocol.Response
	// Cause is nil when Done; otherwise the originating error: a
	// *bus.Error, a decode error, a *protocol.StatusError or an
	// *UnexpectedStatusError.
	Cause error
}

// Done reports a successful transaction.
func (o Outcome) Done() bool { return o.State == StateDone }

// Failed reports a failed transaction.
func (o Outcome) Failed() bool { return o.State == StateFailed }

// UnexpectedStatusError reports a validated status outside the
// command's contract.
type UnexpectedStatusError struct {
	Command protocol.Command
	Status  protocol.Status
}

// Error implements error.
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s is not a valid response to %s", e.Status, e.Command)
}

// NewEngine creates an engine over b with cfg.
func NewEngine(b bus.Bus, cfg Config) *Engine {
	e := &Engine{
		bus:     b,
		addr:    cfg.Addr,
		txDelay: cfg.TxDelay,
		delay:   cfg.Delay,
	}
	if e.txDelay <= 0 {
		e.txDelay = DefaultTxDelay
	}
	return e
}

// TxDelay returns the current write-to-read delay.
func (e *Engine) TxDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txDelay
}

// SetTxDelay adjusts the write-to-read delay at runtime.
func (e *Engine) SetTxDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.mu.Lock()
	e.txDelay = d
	e.mu.Unlock()
	glog.V(1).Infof("tx delay: %v", d)
}

// Stats returns the transaction and error counters.
func (e *Engine) Stats() (tx, errs uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txCount, e.errCount
}

// Transact runs one request/response cycle: SENDING writes the encoded
// request, WAITING applies the settle delay, READING pulls one frame,
// VALIDATING decodes it and checks the status against the command's
// contract. The engine never retries; retry policy belongs to the
// caller since it depends on what repeating the command means.
func (e *Engine) Transact(ctx context.Context, req protocol.Request) Outcome {
	e.mu.Lock()
	e.txCount++
	addr, delay := e.addr, e.txDelay
	if e.delay != nil {
		if d, err := e.delay(); err == nil {
			e.txDelay, delay = d, d
		} else {
			glog.Warningf("tuning source: %v", err)
		}
	}
	e.mu.Unlock()

	start := time.Now()

	// SENDING
	if err := e.bus.Write(addr, req.Encode()); err != nil {
		return e.failed(req, err)
	}

	// WAITING: mandatory settle delay before the read phase
	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return e.failed(req, ctx.Err())
	case <-timer.C:
	}

	// READING
	raw, err := e.bus.Read(addr, protocol.FrameSize)
	if err != nil {
		return e.failed(req, err)
	}

	// VALIDATING
	rsp, err := protocol.DecodeResponse(raw)
	if err != nil {
		return e.failed(req, err)
	}
	if !protocol.AllowsStatus(req.Command, rsp.Status) {
		out := e.failed(req, &UnexpectedStatusError{Command: req.Command, Status: rsp.Status})
		out.Response = rsp
		return out
	}
	if err := rsp.Status.Err(); err != nil {
		out := e.failed(req, err)
		out.Response = rsp
		return out
	}

	if glog.V(2) {
		tx, errs := e.Stats()
		glog.Infof("%s done in %v (%d/%d err/tx)", req.Command, time.Since(start), errs, tx)
	}
	return Outcome{State: StateDone, Response: rsp}
}

func (e *Engine) failed(req protocol.Request, cause error) Outcome {
	e.mu.Lock()
	e.errCount++
	e.mu.Unlock()
	glog.V(1).Infof("%s failed: %v", req.Command, cause)
	return Outcome{State: StateFailed, Cause: cause}
}

// Handshake verifies the peripheral is present and enables the motor
// controller: PING then ENABLE.
func (e *Engine) Handshake(ctx context.Context) error {
	for _, cmd := range []protocol.Command{protocol.CmdPing, protocol.CmdEnable} {
		if out := e.Transact(ctx, protocol.Request{Command: cmd}); out.Failed() {
			return fmt.Errorf("handshake %s: %w", cmd, out.Cause)
		}
	}
	glog.V(1).Infof("peripheral at 0x%02x ready", e.addr)
	return nil
}
