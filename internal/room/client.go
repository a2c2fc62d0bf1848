package room

import (
	"sync"

	"github.com/google/uuid"
)

// Connection is the subset of *websocket.Conn a client needs.
type Connection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one browser view attached to a room.
type Client struct {
	ID   string
	conn Connection
	// gorilla connections allow a single concurrent writer.
	writeMu sync.Mutex
}

func NewClient(conn Connection) *Client {
	return &Client{
		ID:   uuid.New().String(),
		conn: conn,
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
