package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ResponseAllowance is added to the command timeout while waiting for the
// server, covering the network round trip
const ResponseAllowance = 2 * time.Second

// ErrConnectionClosed is returned by Execute after Close or after a failed
// exchange. A failed connection cannot be reused; Dial again.
var ErrConnectionClosed = errors.New("bridge connection closed")

// Client executes commands on a remote bridge server. It implements
// scc1.Transport.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	url    string
	closed bool
	failed error
}

// Dial connects to a bridge URL such as ws://host:5200/shdlc.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn, url: url}, nil
}

// Name returns the bridge URL.
func (c *Client) Name() string {
	return c.url
}

// Execute forwards one command and waits for the server's reply.
func (c *Client) Execute(command byte, data []byte, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}
	if c.failed != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionClosed, c.failed)
	}

	msg := EncodeRequest(Request{Command: command, Timeout: timeout, Data: data})

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return nil, c.fail(fmt.Errorf("send to %s: %w", c.url, err))
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(timeout + ResponseAllowance))
	for {
		msgType, reply, err := c.conn.ReadMessage()
		if err != nil {
			// gorilla connections are unusable after a read error
			return nil, c.fail(fmt.Errorf("receive from %s: %w", c.url, err))
		}
		if msgType == websocket.BinaryMessage {
			return DecodeResponse(reply)
		}
	}
}

// fail marks the connection broken and releases it. Called with mu held.
func (c *Client) fail(err error) error {
	c.failed = err
	_ = c.conn.Close()
	return err
}

// Close sends a close message and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.failed != nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
