package bridge

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Response status codes
const (
	StatusOK    = 0x00
	StatusError = 0x01
)

// RequestHeaderSize is the size of the request header
const RequestHeaderSize = 3

// Request is one command forwarded to the bridge server.
type Request struct {
	Command byte
	Timeout time.Duration
	Data    []byte
}

// RemoteError is an error reported by the server side transport.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "bridge: " + e.Message
}

// EncodeRequest builds a binary request message.
//
// Message structure:
//
//	[CMD][TIMEOUT_MS_H][TIMEOUT_MS_L][DATA...]
//
// Timeouts above 65535 ms are clamped.
func EncodeRequest(req Request) []byte {
	ms := req.Timeout.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	if ms > math.MaxUint16 {
		ms = math.MaxUint16
	}

	msg := make([]byte, RequestHeaderSize, RequestHeaderSize+len(req.Data))
	msg[0] = req.Command
	binary.BigEndian.PutUint16(msg[1:3], uint16(ms))
	return append(msg, req.Data...)
}

// DecodeRequest parses a binary request message.
func DecodeRequest(msg []byte) (Request, error) {
	if len(msg) < RequestHeaderSize {
		return Request{}, fmt.Errorf("request too short: %d bytes", len(msg))
	}
	data := make([]byte, len(msg)-RequestHeaderSize)
	copy(data, msg[RequestHeaderSize:])
	return Request{
		Command: msg[0],
		Timeout: time.Duration(binary.BigEndian.Uint16(msg[1:3])) * time.Millisecond,
		Data:    data,
	}, nil
}

// EncodeResponse builds a binary response message.
//
// Message structure:
//
//	[STATUS][BODY...]
//
// With StatusOK the body is the response data, with StatusError it is the
// error text.
func EncodeResponse(data []byte, err error) []byte {
	if err != nil {
		return append([]byte{StatusError}, err.Error()...)
	}
	return append([]byte{StatusOK}, data...)
}

// DecodeResponse parses a binary response message.
func DecodeResponse(msg []byte) ([]byte, error) {
	if len(msg) == 0 {
		return nil, fmt.Errorf("empty response message")
	}
	switch msg[0] {
	case StatusOK:
		data := make([]byte, len(msg)-1)
		copy(data, msg[1:])
		return data, nil
	case StatusError:
		return nil, &RemoteError{Message: string(msg[1:])}
	default:
		return nil, fmt.Errorf("unknown response status 0x%02X", msg[0])
	}
}
