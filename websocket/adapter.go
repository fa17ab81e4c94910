package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kudryaWW/drawing-app-simple/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn adapts one gorilla/websocket connection to domain.Connection. It
// drives the registry's lifecycle hooks and feeds inbound frames to the
// message handler.
type Conn struct {
	id       string
	ws       *websocket.Conn
	send     chan []byte
	registry domain.Registry
	handler  domain.MessageHandler
}

func NewConn(id string, ws *websocket.Conn, reg domain.Registry, h domain.MessageHandler) *Conn {
	return &Conn{
		id:       id,
		ws:       ws,
		send:     make(chan []byte, 256),
		registry: reg,
		handler:  h,
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues data without blocking the broadcast path. A full buffer means
// the client is not keeping up; the delivery is reported failed and dropped.
func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// Start registers the connection before the read loop begins, so the client
// receives the current presence count immediately on join.
func (c *Conn) Start() {
	c.registry.OnConnect(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	var reason error
	defer func() {
		c.registry.OnDisconnect(c.id, reason)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			reason = err
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
