package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
)

// DefaultDialTimeout bounds the WebSocket handshake when the caller's
// context carries no deadline.
const DefaultDialTimeout = 30 * time.Second

// Conn is a single full-duplex connection to the push endpoint.
// Read and Write carry raw envelope bytes; decoding happens in the
// connection manager so a malformed message never tears down the socket.
type Conn interface {
	// Read blocks until the next message arrives.
	Read() ([]byte, error)

	// Write sends one message. Safe for concurrent use.
	Write(data []byte) error

	// Close closes the socket. Safe to call multiple times.
	Close() error
}

// Dialer establishes connections to the push endpoint.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WSDialer dials WebSocket connections.
type WSDialer struct {
	// HandshakeTimeout bounds the opening handshake
	// (default: DefaultDialTimeout).
	HandshakeTimeout time.Duration
}

// Dial opens a WebSocket connection to url.
func (d *WSDialer) Dial(ctx context.Context, url string) (Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	return &wsConn{ws: ws, closeCh: make(chan struct{})}, nil
}

var _ Dialer = (*WSDialer)(nil)

// wsConn wraps a gorilla WebSocket connection.
type wsConn struct {
	ws      *websocket.Conn
	closeCh chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
}

// Read returns the next text or binary message.
func (c *wsConn) Read() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// Write sends a text message.
func (c *wsConn) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the socket.
func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.ws.Close()
	})
	return err
}

// IsNormalClose reports whether a read error represents an orderly
// close rather than a transport failure. The two classes use different
// reconnect delays: errors are likelier to be persistent.
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
