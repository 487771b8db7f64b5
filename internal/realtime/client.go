package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"weighbridge-server/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Captured images arrive inline, so commands can be several megabytes.
	maxMessageSize = 32 << 20

	sendQueueSize = 64
)

// Handler processes one inbound frame from c.
type Handler func(ctx context.Context, c *Client, data []byte)

// Client is one operator session. Outbound frames go through a bounded queue
// drained by the client's own writer goroutine.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return newClient(hub, conn, sendQueueSize)
}

func newClient(hub *Hub, conn *websocket.Conn, queueSize int) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues msg for this session only.
func (c *Client) Send(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithSession(c.id).Error("Failed to encode reply", "type", msg.Type, "error", err)
		return false
	}
	if !c.enqueue(data) {
		c.hub.metrics.BroadcastDropped()
		logger.WithSession(c.id).Warn("Outbound queue full, reply dropped", "type", msg.Type)
		return false
	}
	return true
}

func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// Run registers the session, pumps frames until the connection ends, then
// unregisters. onConnect runs after registration so the session receives
// every broadcast issued after its baseline.
func (c *Client) Run(ctx context.Context, onConnect func(*Client), handle Handler) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	if onConnect != nil {
		onConnect(c)
	}

	go c.writePump()
	c.readPump(ctx, handle)
}

func (c *Client) readPump(ctx context.Context, handle Handler) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithSession(c.id).Warn("Session read failed", "error", err)
			}
			return
		}
		handle(ctx, c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.WithSession(c.id).Debug("Session write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
