// Package bus defines the two-wire bus primitives the protocol rides
// on, plus an in-process loopback implementation for tests and
// simulation. Real bus drivers live behind the Bus interface.
package bus

import "fmt"

// Bus is the host-side view of the bus driver. The bus is exclusive
// and half-duplex: one transaction at a time against a single target.
type Bus interface {
	// Write sends data to the peripheral at addr.
	Write(addr byte, data []byte) error
	// Read pulls exactly n bytes from the peripheral at addr.
	Read(addr byte, n int) ([]byte, error)
}

// Port is the peripheral-side attachment point. A bus implementation
// delivers the bytes of each host write to HandleWrite, in order, and
// backs host reads with ReadResponse.
type Port interface {
	// HandleWrite delivers the bytes of one host write.
	HandleWrite(data []byte)
	// ReadResponse copies out up to n response bytes.
	ReadResponse(n int) []byte
}

// ErrorKind classifies transport failures.
type ErrorKind int

// Transport failure kinds.
const (
	KindNack      ErrorKind = iota // no device acknowledged the address
	KindShortRead                  // fewer bytes returned than requested
	KindTimeout                    // bus transaction timed out
	KindIO                         // other driver-level failure
)

var kindNames = map[ErrorKind]string{
	KindNack:      "address nack",
	KindShortRead: "short read",
	KindTimeout:   "timeout",
	KindIO:        "i/o error",
}

// Error is a transport-level failure. It is fatal to the current
// transaction and is never retried by the protocol engines.
type Error struct {
	Kind ErrorKind
	Addr byte
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("bus %s at 0x%02x", kindNames[e.Kind], e.Addr)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the driver-level cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
