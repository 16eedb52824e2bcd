package shdlc

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when no complete response arrives in time
var ErrTimeout = errors.New("shdlc: response timeout")

// ErrClosed is returned by Execute after Close
var ErrClosed = errors.New("shdlc: port closed")

// FrameError reports a response that could not be decoded
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string {
	return "shdlc: invalid frame: " + e.Reason
}

// StateError reports a non-zero execution error code in a response
type StateError struct {
	Command byte
	State   byte
}

// stateMessages describes the standard SHDLC execution error codes
var stateMessages = map[byte]string{
	0x01: "illegal data size",
	0x02: "unknown command",
	0x03: "no access right",
	0x04: "illegal command parameter or parameter out of range",
}

// Code returns the execution error code without the device error flag
func (e *StateError) Code() byte {
	return e.State & 0x7F
}

func (e *StateError) Error() string {
	msg, ok := stateMessages[e.Code()]
	if !ok {
		msg = "execution error"
	}
	return fmt.Sprintf("shdlc: command 0x%02X failed with state 0x%02X: %s", e.Command, e.Code(), msg)
}

// IsStateError checks if an error carries a device execution state
func IsStateError(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}
