package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 65536

	// Send buffer size
	sendBufferSize = 256
)

// Client represents one WebSocket connection. A participant who reloads
// the page comes back as a new Client with a new connection ID.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	connectionID string

	// sendMu serializes sends against Close. Broadcasts run on other
	// connections' reader goroutines, so a send can race the hub closing
	// this channel on disconnect.
	sendMu     sync.Mutex
	send       chan []byte
	sendClosed bool

	mu          sync.RWMutex
	displayName string
	roomCode    string

	logger *zap.Logger
}

// NewClient creates a new client
func NewClient(hub *Hub, conn *websocket.Conn, connectionID string, logger *zap.Logger) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, sendBufferSize),
		connectionID: connectionID,
		logger:       logger,
	}
}

// ConnectionID returns the connection identifier
func (c *Client) ConnectionID() string {
	return c.connectionID
}

// DisplayName returns the name chosen on create/join
func (c *Client) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayName
}

// RoomCode returns the room this connection is joined to, or ""
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

func (c *Client) setRoom(code, displayName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
	c.displayName = displayName
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error",
					zap.String("connection_id", c.connectionID),
					zap.Error(err),
				)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Failed to parse message",
				zap.String("connection_id", c.connectionID),
				zap.Error(err),
			)
			c.sendError(400, "invalid message format")
			continue
		}

		c.handleMessage(&msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

// handleMessage dispatches intents. Malformed payloads are dropped: they
// indicate a broken or hostile client, not a recoverable condition.
func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeCreateRoom:
		var payload CreateRoomPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.CreateRoom(c, payload, msg.RequestID)

	case MessageTypeJoinRoom:
		var payload JoinRoomPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.JoinRoom(c, payload, msg.RequestID)

	case MessageTypeAddToQueue:
		var payload AddToQueuePayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.AddToQueue(c, payload)

	case MessageTypeLoadPlaylist:
		var payload LoadPlaylistPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.LoadPlaylist(c, payload)

	case MessageTypeSyncPlay, MessageTypeSyncPause, MessageTypeSyncSeek:
		var payload SyncPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.Sync(c, msg.Type, payload)

	case MessageTypePlaySong:
		var payload PlaySongPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.PlaySong(c, payload.Index)

	case MessageTypeNextSong:
		c.hub.NextSong(c)

	case MessageTypeReorderQueue:
		var payload ReorderQueuePayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.ReorderQueue(c, payload)

	case MessageTypeChat:
		var payload ChatPayload
		if err := msg.ParsePayload(&payload); err != nil {
			c.dropPayload(msg, err)
			return
		}
		c.hub.Chat(c, payload.Message)

	default:
		c.sendError(400, "unknown message type")
	}
}

func (c *Client) dropPayload(msg *Message, err error) {
	c.logger.Warn("Dropping malformed intent payload",
		zap.String("connection_id", c.connectionID),
		zap.String("type", string(msg.Type)),
		zap.Error(err),
	)
}

// SendMessage sends a message to the client
func (c *Client) SendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal message",
			zap.String("connection_id", c.connectionID),
			zap.Error(err),
		)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Channel is full, client is slow
		c.logger.Warn("Client send buffer full",
			zap.String("connection_id", c.connectionID),
		)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code int, message string) {
	errMsg, _ := NewErrorMessage(code, message)
	c.SendMessage(errMsg)
}

// Close shuts down the outbound channel. Safe to call more than once;
// messages sent afterwards are discarded.
func (c *Client) Close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}
