package peripheral

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadrover/i2clink/pkg/protocol"
)

func newEnabledDevice(t *testing.T) (*Device, *Motors) {
	motors := NewMotors()
	motors.Enable()
	return NewDevice(MotorActions(motors)), motors
}

func respond(t *testing.T, d *Device, frame []byte) protocol.Response {
	d.HandleWrite(frame)
	raw := d.ReadResponse(protocol.FrameSize)
	require.Len(t, raw, protocol.FrameSize)
	rsp, err := protocol.DecodeResponse(raw)
	require.NoError(t, err)
	return rsp
}

func TestDispatchSetSpeed(t *testing.T) {
	d, motors := newEnabledDevice(t)

	req := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{0x32, 0x32, 0x32, 0x32}}
	rsp := respond(t, d, req.Encode())
	require.Equal(t, protocol.StatusOK, rsp.Status)
	require.Equal(t, req.Speeds, rsp.Speeds)
	require.Equal(t, req.Speeds, motors.Speeds())
}

func TestDispatchStopAndStatus(t *testing.T) {
	d, motors := newEnabledDevice(t)
	require.NoError(t, motors.SetSpeeds(protocol.Speeds{100, 100, -100, -100}))

	rsp := respond(t, d, protocol.Request{Command: protocol.CmdGetStatus}.Encode())
	require.Equal(t, protocol.StatusData, rsp.Status)
	require.Equal(t, protocol.Speeds{100, 100, -100, -100}, rsp.Speeds)

	rsp = respond(t, d, protocol.Request{Command: protocol.CmdStop}.Encode())
	require.Equal(t, protocol.StatusOK, rsp.Status)
	require.Equal(t, protocol.Speeds{}, rsp.Speeds)
	require.Equal(t, protocol.Speeds{}, motors.Speeds())
}

// A corrupted data byte invalidates the CRC; the peripheral still
// responds, with ERROR_BAD_CRC and zeroed data.
func TestDispatchBadChecksum(t *testing.T) {
	d, motors := newEnabledDevice(t)

	frame := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{0x32, 0x32, 0x32, 0x32}}.Encode()
	frame[protocol.FrameSize-2] ^= 0xff
	rsp := respond(t, d, frame)
	require.Equal(t, protocol.StatusErrBadCRC, rsp.Status)
	require.Equal(t, protocol.Speeds{}, rsp.Speeds)
	require.Equal(t, protocol.Speeds{}, motors.Speeds())
}

// A checksum-valid frame with an unknown opcode is answered with
// ERROR_UNKNOWN_COMMAND, not dispatched to a default action.
func TestDispatchUnknownOpcode(t *testing.T) {
	d, _ := newEnabledDevice(t)

	frame := protocol.Request{Command: protocol.CmdPing}.Encode()
	frame[0] = 0xee
	frame[protocol.FrameSize-1] = protocol.Checksum(frame[:protocol.FrameSize-1])
	rsp := respond(t, d, frame)
	require.Equal(t, protocol.StatusErrUnknownCommand, rsp.Status)
}

func TestDispatchOutOfRange(t *testing.T) {
	d, motors := newEnabledDevice(t)

	req := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{0, 0, 0, 2000}}
	rsp := respond(t, d, req.Encode())
	require.Equal(t, protocol.StatusErrRange, rsp.Status)
	require.Equal(t, protocol.Speeds{}, motors.Speeds())
}

func TestDispatchDisabled(t *testing.T) {
	d := NewDevice(MotorActions(NewMotors()))

	rsp := respond(t, d, protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{1, 1, 1, 1}}.Encode())
	require.Equal(t, protocol.StatusErrDisabled, rsp.Status)

	rsp = respond(t, d, protocol.Request{Command: protocol.CmdEnable}.Encode())
	require.Equal(t, protocol.StatusOK, rsp.Status)

	rsp = respond(t, d, protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{1, 1, 1, 1}}.Encode())
	require.Equal(t, protocol.StatusOK, rsp.Status)
}

// A slow action reports BUSY instead of blocking the transaction.
func TestDispatchBusy(t *testing.T) {
	actions := map[protocol.Command]Action{
		protocol.CmdStop: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			return protocol.Speeds{}, ErrBusy
		}),
	}
	d := NewDevice(actions)

	rsp := respond(t, d, protocol.Request{Command: protocol.CmdStop}.Encode())
	require.Equal(t, protocol.StatusErrBusy, rsp.Status)
}

func TestDispatchActionFault(t *testing.T) {
	actions := map[protocol.Command]Action{
		protocol.CmdEnable: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			return protocol.Speeds{}, errors.New("driver fault")
		}),
	}
	d := NewDevice(actions)

	rsp := respond(t, d, protocol.Request{Command: protocol.CmdEnable}.Encode())
	require.Equal(t, protocol.StatusErrFault, rsp.Status)
}

// Partial writes are buffered until a full frame is available.
func TestDispatchPartialDelivery(t *testing.T) {
	d, _ := newEnabledDevice(t)

	frame := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{7, 7, 7, 7}}.Encode()
	d.HandleWrite(frame[:4])
	// no complete frame yet: the response buffer stays cleared
	_, err := protocol.DecodeResponse(d.ReadResponse(protocol.FrameSize))
	require.Error(t, err)

	d.HandleWrite(frame[4:])
	rsp, err := protocol.DecodeResponse(d.ReadResponse(protocol.FrameSize))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, rsp.Status)
	require.Equal(t, protocol.Speeds{7, 7, 7, 7}, rsp.Speeds)
}

// A single write carrying several frames dispatches all of them; no
// complete frame stays buffered until the next write.
func TestDispatchCoalescedDelivery(t *testing.T) {
	d, motors := newEnabledDevice(t)

	first := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{10, 10, 10, 10}}.Encode()
	second := protocol.Request{Command: protocol.CmdSetSpeed, Speeds: protocol.Speeds{20, 20, 20, 20}}.Encode()
	d.HandleWrite(append(first, second...))

	rsp, err := protocol.DecodeResponse(d.ReadResponse(protocol.FrameSize))
	require.NoError(t, err)
	require.Equal(t, protocol.StatusOK, rsp.Status)
	require.Equal(t, protocol.Speeds{20, 20, 20, 20}, rsp.Speeds)
	require.Equal(t, protocol.Speeds{20, 20, 20, 20}, motors.Speeds())

	rx, errs := d.Stats()
	require.Equal(t, uint64(2), rx)
	require.Equal(t, uint64(0), errs)
}

// For any frame-sized input, exactly one frame-sized response is
// produced and it decodes cleanly.
func TestDispatchAlwaysResponds(t *testing.T) {
	d, _ := newEnabledDevice(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		frame := make([]byte, protocol.FrameSize)
		rng.Read(frame)
		d.HandleWrite(frame)
		raw := d.ReadResponse(protocol.FrameSize)
		require.Len(t, raw, protocol.FrameSize)
		rsp, err := protocol.DecodeResponse(raw)
		require.NoErrorf(t, err, "input %x", frame)
		require.True(t, rsp.Status.IsValid())
	}
}

func TestDeviceCounters(t *testing.T) {
	d, _ := newEnabledDevice(t)

	respond(t, d, protocol.Request{Command: protocol.CmdPing}.Encode())
	bad := protocol.Request{Command: protocol.CmdPing}.Encode()
	bad[1] ^= 0x01
	respond(t, d, bad)

	rx, errs := d.Stats()
	require.Equal(t, uint64(2), rx)
	require.Equal(t, uint64(1), errs)
}
