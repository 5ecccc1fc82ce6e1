package protocol

import "fmt"

// LengthMismatchError reports a frame that is not exactly FrameSize
// bytes.
type LengthMismatchError struct {
	Got int
}

// Error implements error.
func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("frame length %d, want %d", e.Got, FrameSize)
}

// BadChecksumError reports a trailing CRC byte that does not match the
// CRC recomputed over the preceding frame bytes.
type BadChecksumError struct {
	Got  byte
	Want byte
}

// Error implements error.
func (e *BadChecksumError) Error() string {
	return fmt.Sprintf("bad checksum 0x%02x, want 0x%02x", e.Got, e.Want)
}

// UnknownOpcodeError reports an opcode byte outside the closed command
// or status set in an otherwise checksum-valid frame.
type UnknownOpcodeError struct {
	Value byte
}

// Error implements error.
func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02x", e.Value)
}
