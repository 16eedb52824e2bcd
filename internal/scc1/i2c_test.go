package scc1

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// readSerialRequest mimics an I2C driver request that reads a 16-bit value
type readSerialRequest struct {
	tx    []byte
	rx    int
	delay time.Duration
}

func (r readSerialRequest) TxData() []byte           { return r.tx }
func (r readSerialRequest) RxLength() int            { return r.rx }
func (r readSerialRequest) ReadDelay() time.Duration { return r.delay }

func (r readSerialRequest) InterpretResponse(data []byte) (any, error) {
	if len(data) < 2 {
		return nil, errors.New("short response")
	}
	return binary.BigEndian.Uint16(data), nil
}

func TestBuildI2cPayload(t *testing.T) {
	tests := []struct {
		name    string
		address byte
		tx      []byte
		rx      int
		delay   time.Duration
		want    []byte
		wantErr bool
	}{
		{
			name:    "write and read",
			address: 0x08,
			tx:      []byte{0x36, 0x08},
			rx:      9,
			delay:   20 * time.Millisecond,
			want:    []byte{0x08, 0x02, 0x09, 0x00, 0x14, 0x36, 0x08},
		},
		{
			name:    "read only",
			address: 0x40,
			tx:      nil,
			rx:      3,
			delay:   0,
			want:    []byte{0x40, 0x00, 0x03, 0x00, 0x00},
		},
		{
			name:    "delay rounded to milliseconds",
			address: 0x08,
			tx:      []byte{0xE1},
			rx:      0,
			delay:   1500 * time.Microsecond,
			want:    []byte{0x08, 0x01, 0x00, 0x00, 0x02, 0xE1},
		},
		{
			name:    "large delay big endian",
			address: 0x08,
			rx:      1,
			delay:   300 * time.Millisecond,
			want:    []byte{0x08, 0x00, 0x01, 0x01, 0x2C},
		},
		{
			name:    "rx length too large",
			address: 0x08,
			rx:      256,
			wantErr: true,
		},
		{
			name:    "negative rx length",
			address: 0x08,
			rx:      -1,
			wantErr: true,
		},
		{
			name:    "tx too long",
			address: 0x08,
			tx:      make([]byte, 256),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildI2cPayload(tt.address, tt.tx, tt.rx, tt.delay)
			if tt.wantErr {
				if !IsInvalidArgument(err) {
					t.Fatalf("error = %v, want invalid argument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("payload = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestI2cTransceive(t *testing.T) {
	tests := []struct {
		name     string
		rx       int
		response []byte
		wantLen  int
	}{
		{name: "returns data", rx: 2, response: []byte{0xBE, 0xEF}, wantLen: 2},
		{name: "zero rx length discards data", rx: 0, response: []byte{0xBE, 0xEF}, wantLen: 0},
		{name: "empty response", rx: 2, response: nil, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}
			transport.AddResponse(tt.response)
			i2c := New(transport).I2cTransceiver()

			got, err := i2c.Transceive(0x08, []byte{0x36, 0x08}, tt.rx, 0, I2cTimeout)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != tt.wantLen {
				t.Errorf("result = %v, want length %d", got, tt.wantLen)
			}
			if transport.calls[0].command != CmdI2cTransceive {
				t.Errorf("command = 0x%02X, want 0x%02X", transport.calls[0].command, CmdI2cTransceive)
			}
		})
	}
}

func TestI2cExecute(t *testing.T) {
	transport := &fakeTransport{}
	transport.AddResponse([]byte{0x12, 0x34})
	i2c := NewI2cTransceiver(New(transport))

	req := readSerialRequest{tx: []byte{0x36, 0x7C}, rx: 2, delay: time.Millisecond}
	got, err := i2c.Execute(0x08, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(uint16) != 0x1234 {
		t.Errorf("Execute() = %v, want 0x1234", got)
	}

	want := []byte{0x08, 0x02, 0x02, 0x00, 0x01, 0x36, 0x7C}
	if !bytes.Equal(transport.calls[0].data, want) {
		t.Errorf("payload = % X, want % X", transport.calls[0].data, want)
	}
	if transport.calls[0].timeout != I2cTimeout {
		t.Errorf("timeout = %v, want %v", transport.calls[0].timeout, I2cTimeout)
	}
}

func TestI2cExecuteInvalidRequest(t *testing.T) {
	transport := &fakeTransport{}
	i2c := NewI2cTransceiver(New(transport))

	_, err := i2c.Execute(0x08, readSerialRequest{rx: 300})
	if !IsInvalidArgument(err) {
		t.Fatalf("error = %v, want invalid argument", err)
	}
	if len(transport.calls) != 0 {
		t.Errorf("calls = %d, want 0", len(transport.calls))
	}
}
