package protocol

import "fmt"

// Speed limits shared by every speed-carrying command, in per-mille of
// full scale.
const (
	SpeedMin int16 = -1000
	SpeedMax int16 = 1000
)

// Spec is the static contract of one command: whether its speed fields
// are meaningful, their valid range, the success status it produces
// and the error statuses it may legitimately produce.
type Spec struct {
	UsesSpeeds bool
	MinSpeed   int16
	MaxSpeed   int16
	OK         Status
	Errors     []Status
}

var vocab = map[Command]Spec{
	CmdPing:      {OK: StatusOK},
	CmdSetSpeed:  {UsesSpeeds: true, MinSpeed: SpeedMin, MaxSpeed: SpeedMax, OK: StatusOK, Errors: []Status{StatusErrRange, StatusErrBusy, StatusErrDisabled, StatusErrFault}},
	CmdStop:      {OK: StatusOK, Errors: []Status{StatusErrBusy, StatusErrDisabled, StatusErrFault}},
	CmdGetStatus: {OK: StatusData, Errors: []Status{StatusErrBusy}},
	CmdEnable:    {OK: StatusOK, Errors: []Status{StatusErrFault}},
	CmdDisable:   {OK: StatusOK, Errors: []Status{StatusErrFault}},
}

// SpecOf returns the contract of cmd.
func SpecOf(cmd Command) (Spec, bool) {
	spec, ok := vocab[cmd]
	return spec, ok
}

// RangeError reports a speed field outside the command's valid range.
// It is a domain validation failure, not a decode failure: the frame
// itself was well-formed.
type RangeError struct {
	Motor int
	Value int16
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("motor %d speed %d out of range [%d, %d]", e.Motor, e.Value, SpeedMin, SpeedMax)
}

// ValidateArgs checks speeds against the command's range. Commands
// that ignore their speed fields accept any values.
func (s Spec) ValidateArgs(speeds Speeds) error {
	if !s.UsesSpeeds {
		return nil
	}
	for i, v := range speeds {
		if v < s.MinSpeed || v > s.MaxSpeed {
			return &RangeError{Motor: i, Value: v}
		}
	}
	return nil
}

// AllowsStatus reports whether st is a legitimate response to cmd.
// Decode-failure statuses are legitimate for any command since the
// peripheral cannot know which command a corrupted frame carried.
func AllowsStatus(cmd Command, st Status) bool {
	if st == StatusErrBadCRC || st == StatusErrUnknownCommand {
		return true
	}
	spec, ok := vocab[cmd]
	if !ok {
		return false
	}
	if st == spec.OK {
		return true
	}
	for _, e := range spec.Errors {
		if st == e {
			return true
		}
	}
	return false
}
