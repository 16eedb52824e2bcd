package shdlc

import (
	"fmt"
)

// Frame delimiters and escaping
const (
	FlagByte   = 0x7E
	EscapeByte = 0x7D
	EscapeXor  = 0x20

	xon  = 0x11
	xoff = 0x13
)

// MaxDataLength is the largest payload a frame can carry
const MaxDataLength = 255

// Response is a decoded MISO frame.
type Response struct {
	Address byte
	Command byte
	State   byte
	Data    []byte
}

// ErrorCode returns the execution error code (state bits 0-6).
func (r *Response) ErrorCode() byte {
	return r.State & 0x7F
}

// DeviceErrorFlag reports whether the device signals a pending device error (state bit 7).
func (r *Response) DeviceErrorFlag() bool {
	return r.State&0x80 != 0
}

// Checksum returns the inverted low byte of the sum of data.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum
}

// Stuff escapes the bytes that must not appear inside a frame.
//
//	0x7E -> 0x7D 0x5E
//	0x7D -> 0x7D 0x5D
//	0x11 -> 0x7D 0x31
//	0x13 -> 0x7D 0x33
func Stuff(data []byte) []byte {
	out := make([]byte, 0, len(data)+4)
	for _, b := range data {
		switch b {
		case FlagByte, EscapeByte, xon, xoff:
			out = append(out, EscapeByte, b^EscapeXor)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Unstuff reverses Stuff.
func Unstuff(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b != EscapeByte {
			out = append(out, b)
			continue
		}
		i++
		if i >= len(data) {
			return nil, &FrameError{Reason: "frame ends with escape byte"}
		}
		switch data[i] {
		case FlagByte ^ EscapeXor, EscapeByte ^ EscapeXor, xon ^ EscapeXor, xoff ^ EscapeXor:
			out = append(out, data[i]^EscapeXor)
		default:
			return nil, &FrameError{Reason: fmt.Sprintf("invalid escape sequence 0x7D 0x%02X", data[i])}
		}
	}
	return out, nil
}

// BuildRequest constructs a MOSI frame.
//
// Frame structure (before stuffing):
//
//	[0x7E][ADDR][CMD][LEN][DATA...][CHK][0x7E]
//
// Everything between the flags is byte-stuffed.
func BuildRequest(address, command byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataLength {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxDataLength)
	}

	content := make([]byte, 0, 4+len(data))
	content = append(content, address, command, byte(len(data)))
	content = append(content, data...)
	content = append(content, Checksum(content))

	frame := make([]byte, 0, len(content)+8)
	frame = append(frame, FlagByte)
	frame = append(frame, Stuff(content)...)
	frame = append(frame, FlagByte)
	return frame, nil
}

// BuildResponse constructs a MISO frame. The bridge server and tests use it
// to play the device side.
//
// Frame structure (before stuffing):
//
//	[0x7E][ADDR][CMD][STATE][LEN][DATA...][CHK][0x7E]
func BuildResponse(address, command, state byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataLength {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxDataLength)
	}

	content := make([]byte, 0, 5+len(data))
	content = append(content, address, command, state, byte(len(data)))
	content = append(content, data...)
	content = append(content, Checksum(content))

	frame := make([]byte, 0, len(content)+8)
	frame = append(frame, FlagByte)
	frame = append(frame, Stuff(content)...)
	frame = append(frame, FlagByte)
	return frame, nil
}

// ParseResponse decodes the stuffed bytes between the two flags of a MISO frame.
func ParseResponse(body []byte) (*Response, error) {
	content, err := Unstuff(body)
	if err != nil {
		return nil, err
	}
	if len(content) < 5 {
		return nil, &FrameError{Reason: fmt.Sprintf("frame too short: %d bytes", len(content))}
	}

	chk := content[len(content)-1]
	if want := Checksum(content[:len(content)-1]); chk != want {
		return nil, &FrameError{Reason: fmt.Sprintf("checksum mismatch: got 0x%02X, want 0x%02X", chk, want)}
	}

	length := int(content[3])
	if len(content) != 5+length {
		return nil, &FrameError{Reason: fmt.Sprintf("length field %d does not match %d data bytes", length, len(content)-5)}
	}

	data := make([]byte, length)
	copy(data, content[4:4+length])
	return &Response{
		Address: content[0],
		Command: content[1],
		State:   content[2],
		Data:    data,
	}, nil
}
