package websocket

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Client represents one WebSocket connection bound to a seat in a session.
type Client struct {
	ConnID    string
	SessionID string
	PlayerID  string
	Conn      *websocket.Conn
	Send      chan []byte
}

// ClientMessage is the envelope for inbound messages. Cards stays raw so
// the handler decides how to decode it per message type.
type ClientMessage struct {
	Type  string          `json:"type"`
	Cards json.RawMessage `json:"cards,omitempty"`
}

// ReadPump reads messages until the connection drops or the handler closes
// it. handleMessage returning false terminates the loop.
func (c *Client) ReadPump(unregister func(*Client), handleMessage func(*Client, ClientMessage) bool) {
	defer func() {
		unregister(c)
		c.Conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.Conn.ReadJSON(&msg); err != nil {
			break
		}
		if !handleMessage(c, msg) {
			break
		}
	}
}

// WritePump drains the send channel onto the wire. A closed channel sends
// the close frame and exits.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// CloseWithCode writes a close frame with the given status and reason, then
// closes the underlying connection.
func (c *Client) CloseWithCode(code int, reason string) {
	c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	c.Conn.Close()
}
