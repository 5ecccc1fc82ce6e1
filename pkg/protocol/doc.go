// Package protocol implements the fixed-frame command protocol spoken
// between the drive host and the motor MCU.
package protocol

// Every frame is FrameSize bytes in both directions: one opcode byte
// (a Command in requests, a Status in responses), four big-endian
// int16 motor speed fields, and a trailing CRC-8 byte. There is no
// length field; the fixed size is the framing.
//
// Producer: drive host (pkg/host)
// Consumer: motor MCU (pkg/peripheral)
//
// The CRC table and the byte order are a compatibility contract. Both
// ends must use this package (or a bit-exact port of it) or frames
// fail validation.
