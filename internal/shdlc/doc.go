// Package shdlc implements the Sensirion SHDLC serial link used by the SCC1
// bridge.
//
// # Frame Layout
//
// Requests (master out, slave in):
//
//	[0x7E][ADDR][CMD][LEN][DATA...][CHK][0x7E]
//
// Responses (master in, slave out):
//
//	[0x7E][ADDR][CMD][STATE][LEN][DATA...][CHK][0x7E]
//
// CHK is the inverted low byte of the sum of all bytes between the flags.
// 0x7E, 0x7D, 0x11 and 0x13 inside a frame are escaped with 0x7D followed by
// the byte XOR 0x20.
//
// # Usage Example
//
//	port, err := shdlc.Open("/dev/ttyUSB0", shdlc.WithBaudRate(115200))
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
//
//	dev, err := scc1.Open(port)
//
// # Errors
//
// A response whose state byte carries a non-zero execution code is returned as
// *StateError. Checksum, escape and length problems are *FrameError. A missing
// response is ErrTimeout.
package shdlc
