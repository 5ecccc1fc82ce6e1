package protocol

import "fmt"

// Command identifies a request opcode understood by the peripheral.
type Command byte

// Command opcodes. Kept below 0x40 so a command byte can never be
// mistaken for a Status byte.
const (
	CmdPing      Command = 0x01 // sanity check, no side effect
	CmdSetSpeed  Command = 0x02 // set all four motor speeds
	CmdStop      Command = 0x03 // stop all motors immediately
	CmdGetStatus Command = 0x04 // query current motor speeds
	CmdEnable    Command = 0x05 // enable the motor controller
	CmdDisable   Command = 0x06 // stop and disable the motor controller
)

var commandNames = map[Command]string{
	CmdPing:      "PING",
	CmdSetSpeed:  "SET_SPEED",
	CmdStop:      "STOP",
	CmdGetStatus: "GET_STATUS",
	CmdEnable:    "ENABLE",
	CmdDisable:   "DISABLE",
}

// IsValid checks if c is a member of the closed command set.
func (c Command) IsValid() bool {
	_, ok := commandNames[c]
	return ok
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}
