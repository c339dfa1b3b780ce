package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client adapts a WebSocket connection to the hub's Sender contract. Writes
// go through a buffered channel drained by a single writePump goroutine, so
// Send never blocks the hub.
type Client struct {
	conn *websocket.Conn
	send chan ServerMessage
	once sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	c := &Client{
		conn: conn,
		send: make(chan ServerMessage, 64),
	}
	go c.writePump()
	return c
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Send queues a message for delivery. A client that cannot keep up loses the
// message rather than stalling the room; delivery is best-effort.
func (c *Client) Send(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
	}
}

// Close stops the write pump, which closes the underlying connection
func (c *Client) Close() {
	c.once.Do(func() { close(c.send) })
}
