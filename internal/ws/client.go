package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a gorilla websocket connection with the surface the collector
// needs. It is used by a single reader/writer goroutine.
type Conn struct {
	conn *websocket.Conn
}

// Dial opens a WebSocket connection to the endpoint.
func Dial(ctx context.Context, url string) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 15 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// ReadMessage blocks for the next text frame.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// WriteJSON sends v as one JSON text frame.
func (c *Conn) WriteJSON(v interface{}) error {
	return c.conn.WriteJSON(v)
}

// SetReadDeadline bounds the next ReadMessage. A zero time clears it.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close closes the underlying connection. Safe to call more than once;
// a second close reports an error that callers ignore.
func (c *Conn) Close() error {
	return c.conn.Close()
}
