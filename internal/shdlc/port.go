package shdlc

import (
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/scc1/internal/logging"
)

const (
	// DefaultBaudRate is the SCC1 factory setting
	DefaultBaudRate = 115200

	// TransferAllowance is added to every command timeout to cover the time
	// the frames spend on the wire
	TransferAllowance = 50 * time.Millisecond

	readChunkSize = 64
)

// Conn is the part of a serial port the transport needs. serial.Port
// satisfies it.
type Conn interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Port executes SCC1 commands over an SHDLC serial link. It implements
// scc1.Transport and serializes concurrent callers.
type Port struct {
	mu      sync.Mutex
	conn    Conn
	name    string
	address byte
	closed  bool

	pending []byte
	buf     []byte
}

// PortOption configures a Port
type PortOption func(*portConfig)

type portConfig struct {
	baudRate int
	address  byte
}

// WithBaudRate sets the serial baud rate (default 115200).
func WithBaudRate(baud int) PortOption {
	return func(c *portConfig) {
		if baud > 0 {
			c.baudRate = baud
		}
	}
}

// WithSlaveAddress sets the SHDLC slave address (default 0).
func WithSlaveAddress(address byte) PortOption {
	return func(c *portConfig) {
		c.address = address
	}
}

func newConfig(opts []PortOption) portConfig {
	cfg := portConfig{baudRate: DefaultBaudRate}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Open opens a serial device such as /dev/ttyUSB0 or COM5.
func Open(path string, opts ...PortOption) (*Port, error) {
	cfg := newConfig(opts)

	mode := &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	conn, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	logging.Info("Serial port opened",
		zap.String("port", path),
		zap.Int("baud_rate", cfg.baudRate),
		zap.Uint8("slave_address", cfg.address),
	)
	return NewPort(conn, path, opts...), nil
}

// NewPort wraps an already open connection.
func NewPort(conn Conn, name string, opts ...PortOption) *Port {
	cfg := newConfig(opts)
	return &Port{
		conn:    conn,
		name:    name,
		address: cfg.address,
		buf:     make([]byte, readChunkSize),
	}
}

// Name returns the serial device path.
func (p *Port) Name() string {
	return p.name
}

// Close closes the serial link. Further Execute calls return ErrClosed.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.conn.Close()
}

// Execute sends one command frame and waits for the matching response.
func (p *Port) Execute(command byte, data []byte, timeout time.Duration) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	frame, err := BuildRequest(p.address, command, data)
	if err != nil {
		return nil, err
	}

	// drop stale bytes from an earlier timed out exchange
	p.pending = nil
	if err := p.conn.ResetInputBuffer(); err != nil {
		return nil, fmt.Errorf("reset input buffer on %s: %w", p.name, err)
	}

	logging.LogFrame(p.name, "tx", command, frame)
	if _, err := p.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("write to %s: %w", p.name, err)
	}

	wait := timeout + TransferAllowance
	if err := p.conn.SetReadTimeout(wait); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", p.name, err)
	}

	body, err := p.readFrame(time.Now().Add(wait))
	if err != nil {
		return nil, err
	}
	logging.LogFrame(p.name, "rx", command, body)

	resp, err := ParseResponse(body)
	if err != nil {
		logging.LogRawBytes("Unparseable SHDLC frame on "+p.name, body)
		return nil, err
	}
	if resp.Address != p.address || resp.Command != command {
		return nil, &FrameError{Reason: fmt.Sprintf(
			"response for address %d command 0x%02X does not match request (address %d command 0x%02X)",
			resp.Address, resp.Command, p.address, command)}
	}
	if resp.DeviceErrorFlag() {
		logging.Warn("Device error flag set", zap.String("port", p.name))
	}
	if resp.ErrorCode() != 0 {
		return nil, &StateError{Command: command, State: resp.State}
	}
	return resp.Data, nil
}

// readFrame returns the stuffed bytes between a start and end flag. Bytes
// before the first flag are discarded; an empty flag pair restarts the frame.
func (p *Port) readFrame(deadline time.Time) ([]byte, error) {
	var body []byte
	started := false

	for {
		b, err := p.readByte(deadline)
		if err != nil {
			return nil, err
		}
		if b != FlagByte {
			if started {
				body = append(body, b)
			}
			continue
		}
		if started && len(body) > 0 {
			return body, nil
		}
		started = true
	}
}

func (p *Port) readByte(deadline time.Time) (byte, error) {
	for len(p.pending) == 0 {
		if time.Now().After(deadline) {
			return 0, ErrTimeout
		}
		n, err := p.conn.Read(p.buf)
		if err != nil {
			return 0, fmt.Errorf("read from %s: %w", p.name, err)
		}
		if n == 0 {
			// read timeout elapsed without data
			if time.Now().After(deadline) {
				return 0, ErrTimeout
			}
			continue
		}
		p.pending = append(p.pending[:0], p.buf[:n]...)
	}

	b := p.pending[0]
	p.pending = p.pending[1:]
	return b, nil
}
