package protocol

import "fmt"

// Status identifies a response code returned by the peripheral.
type Status byte

// Status codes. Kept at 0x40 and above so a status byte can never be
// mistaken for a Command byte.
const (
	StatusOK   Status = 0x40 // command accepted and performed
	StatusData Status = 0x41 // command performed, speed fields carry data

	StatusErrBadCRC         Status = 0x50 // request frame failed CRC validation
	StatusErrUnknownCommand Status = 0x51 // request opcode outside the closed set
	StatusErrRange          Status = 0x52 // argument outside the command's valid range
	StatusErrBusy           Status = 0x53 // action pending, retry with GET_STATUS later
	StatusErrDisabled       Status = 0x54 // motor controller not enabled
	StatusErrFault          Status = 0x55 // actuator rejected the command
)

var statusNames = map[Status]string{
	StatusOK:                "OK",
	StatusData:              "DATA",
	StatusErrBadCRC:         "ERROR_BAD_CRC",
	StatusErrUnknownCommand: "ERROR_UNKNOWN_COMMAND",
	StatusErrRange:          "ERROR_RANGE",
	StatusErrBusy:           "ERROR_BUSY",
	StatusErrDisabled:       "ERROR_DISABLED",
	StatusErrFault:          "ERROR_FAULT",
}

// IsValid checks if s is a member of the closed status set.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// OK reports whether s is a success-class status.
func (s Status) OK() bool {
	return s == StatusOK || s == StatusData
}

// Err returns nil for success-class statuses and a *StatusError
// otherwise.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	return &StatusError{Status: s}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(0x%02x)", byte(s))
}

// StatusError wraps an error-class status reported by the peripheral.
// It is a validated response, distinct from transport and decode
// failures.
type StatusError struct {
	Status Status
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("peripheral reported %s", e.Status)
}
