package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Patients connect from the waiting-room kiosk and their own devices
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection for one player
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID model.PlayerID
	send     chan []byte
	logger   *slog.Logger

	// sendMu serializes enqueue against shutdown so the hub can never
	// send on a closed channel
	sendMu sync.Mutex
	closed bool

	connectedAt time.Time
}

// enqueue queues data for the write pump. It reports false when the client
// is shut down or its buffer is full; either way the caller must not block.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the send channel exactly once, ending the write pump
func (c *Client) shutdown() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ServeWS upgrades the request and runs the connection until it drops. The
// dispatcher receives every inbound event and the final disconnect.
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, dispatcher *Dispatcher, playerID model.PlayerID, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		hub:         hub,
		conn:        conn,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		logger:      logger.With(slog.String("player_id", string(playerID))),
		connectedAt: time.Now(),
	}

	hub.Register(client)

	go client.writePump()
	client.readPump(dispatcher)
}

// readPump reads inbound events until the connection drops, then tears the
// player's engine state down
func (c *Client) readPump(dispatcher *Dispatcher) {
	defer func() {
		c.hub.Unregister(c)
		dispatcher.Disconnected(c.playerID)
		_ = c.conn.Close()
		c.logger.Info("ws connection closed",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("ws read error", slog.String("error", err.Error()))
			}
			return
		}
		dispatcher.Dispatch(c.playerID, message)
	}
}

// writePump writes outbound messages and keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
