package protocol

import "encoding/binary"

// Frame layout.
const (
	// MotorCount is the number of drive motors addressed per frame.
	MotorCount = 4
	// FrameSize is the encoded length of every frame, request and
	// response alike: opcode + MotorCount big-endian int16 fields +
	// trailing CRC byte.
	FrameSize = 1 + 2*MotorCount + 1
)

// Speeds holds one speed field per motor, in per-mille of full scale.
// Negative values reverse the motor.
type Speeds [MotorCount]int16

// Request is the logical content of a host-to-peripheral frame.
type Request struct {
	Command Command
	Speeds  Speeds
}

// Response is the logical content of a peripheral-to-host frame. It
// shares the request frame shape with a Status in the opcode position.
type Response struct {
	Status Status
	Speeds Speeds
}

func encodeFrame(op byte, speeds Speeds) []byte {
	b := make([]byte, 0, FrameSize)
	b = append(b, op)
	for _, s := range speeds {
		b = binary.BigEndian.AppendUint16(b, uint16(s))
	}
	return append(b, Checksum(b))
}

func decodeFrame(data []byte) (op byte, speeds Speeds, err error) {
	if len(data) != FrameSize {
		return 0, speeds, &LengthMismatchError{Got: len(data)}
	}
	got, want := data[FrameSize-1], Checksum(data[:FrameSize-1])
	if got != want {
		return 0, speeds, &BadChecksumError{Got: got, Want: want}
	}
	for i := range speeds {
		speeds[i] = int16(binary.BigEndian.Uint16(data[1+2*i:]))
	}
	return data[0], speeds, nil
}

// Encode produces the FrameSize-byte wire form of the request.
func (r Request) Encode() []byte {
	return encodeFrame(byte(r.Command), r.Speeds)
}

// Encode produces the FrameSize-byte wire form of the response.
func (r Response) Encode() []byte {
	return encodeFrame(byte(r.Status), r.Speeds)
}

// DecodeRequest parses a request frame. It fails with
// *LengthMismatchError, *BadChecksumError or *UnknownOpcodeError;
// unrecognized opcodes are never coerced to a default command.
func DecodeRequest(data []byte) (Request, error) {
	op, speeds, err := decodeFrame(data)
	if err != nil {
		return Request{}, err
	}
	cmd := Command(op)
	if !cmd.IsValid() {
		return Request{}, &UnknownOpcodeError{Value: op}
	}
	return Request{Command: cmd, Speeds: speeds}, nil
}

// DecodeResponse parses a response frame with the same failure modes
// as DecodeRequest.
func DecodeResponse(data []byte) (Response, error) {
	op, speeds, err := decodeFrame(data)
	if err != nil {
		return Response{}, err
	}
	st := Status(op)
	if !st.IsValid() {
		return Response{}, &UnknownOpcodeError{Value: op}
	}
	return Response{Status: st, Speeds: speeds}, nil
}
