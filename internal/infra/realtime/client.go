package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type client struct {
	hub    *Hub
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newClient(h *Hub, userID uuid.UUID, conn *websocket.Conn) *client {
	return &client{
		hub:    h,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue drops the stream when its buffer is full instead of blocking the publisher.
func (c *client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.hub.logger.Warn("Realtime stream too slow, closing",
			slog.String("user_id", c.userID.String()),
		)
		go c.close()
	}
}

// readPump only services control frames; clients never send data.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		c.hub.leave(c)
		close(c.done)
		// Give writePump a moment to send the close frame.
		time.AfterFunc(writeWait, func() { _ = c.conn.Close() })
	})
}
