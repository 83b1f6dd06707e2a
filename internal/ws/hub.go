package ws

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rushikeshnarwade/sync-beats/internal/model"
	apperrors "github.com/rushikeshnarwade/sync-beats/internal/pkg/errors"
	"github.com/rushikeshnarwade/sync-beats/internal/service"
)

// Hub is the fan-out layer: it owns the live connections per room and
// delivers every state-changing event to the room's members, excluding
// the origin for pure transport-position changes so that an applied
// remote event never echoes back as a fresh intent.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients by room code
	rooms map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe access
	mu sync.RWMutex

	roomService *service.RoomService

	logger *zap.Logger
}

// NewHub creates a new Hub
func NewHub(roomService *service.RoomService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		roomService: roomService,
		logger:      logger,
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Client connected",
		zap.String("connection_id", client.connectionID),
		zap.Int("total_clients", total),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	if code := client.RoomCode(); code != "" {
		h.removeFromRoom(client, code)
	}

	client.Close()

	h.logger.Info("Client disconnected",
		zap.String("connection_id", client.connectionID),
	)

	// The room itself outlives the last connection for the grace period.
	if update, ok := h.roomService.LeaveRoom(client.connectionID); ok {
		msg, _ := NewMessage(MessageTypeUserLeft, &MemberEventPayload{
			DisplayName: update.DisplayName,
			Members:     update.Members,
		})
		h.broadcastToRoom(update.RoomCode, msg, nil)
	}
}

// CreateRoom allocates a room for the client and acknowledges with its
// code. The creator learns the initial member list from the ack, not
// from a broadcast.
func (h *Hub) CreateRoom(client *Client, payload CreateRoomPayload, requestID string) {
	snap, left, err := h.roomService.CreateRoom(client.connectionID, payload.DisplayName)
	if err != nil {
		client.sendError(apperrors.GetHTTPStatus(err), apperrors.GetMessage(err))
		return
	}

	h.moveToRoom(client, left, snap.Code, payload.DisplayName)

	msg, _ := NewMessage(MessageTypeRoomCreated, &RoomCreatedPayload{Code: snap.Code})
	msg.RequestID = requestID
	client.SendMessage(msg)
}

// JoinRoom adds the client to an existing room, answers with the full
// state snapshot, and tells everyone else about the newcomer.
func (h *Hub) JoinRoom(client *Client, payload JoinRoomPayload, requestID string) {
	snap, left, err := h.roomService.JoinRoom(payload.Code, client.connectionID, payload.DisplayName)
	if err != nil {
		client.sendError(apperrors.GetHTTPStatus(err), apperrors.GetMessage(err))
		return
	}

	h.moveToRoom(client, left, snap.Code, payload.DisplayName)

	msg, _ := NewMessage(MessageTypeRoomJoined, snap)
	msg.RequestID = requestID
	client.SendMessage(msg)

	joined, _ := NewMessage(MessageTypeUserJoined, &MemberEventPayload{
		DisplayName: payload.DisplayName,
		Members:     snap.Users,
	})
	h.broadcastToRoom(snap.Code, joined, client)
}

// AddToQueue appends one item and pushes the new queue to the whole room.
func (h *Hub) AddToQueue(client *Client, payload AddToQueuePayload) {
	code := client.RoomCode()
	if code == "" || payload.VideoID == "" {
		return
	}

	update, err := h.roomService.Enqueue(code, model.QueueItem{
		VideoID: payload.VideoID,
		Title:   payload.Title,
		AddedBy: client.DisplayName(),
	})
	if err != nil {
		h.logIntentError(client, MessageTypeAddToQueue, err)
		return
	}

	h.broadcastQueue(code, MessageTypeQueueUpdated, update, nil)
}

// LoadPlaylist imports a whole playlist as one mutation and one update.
func (h *Hub) LoadPlaylist(client *Client, payload LoadPlaylistPayload) {
	code := client.RoomCode()
	if code == "" || len(payload.Items) == 0 {
		return
	}

	items := make([]model.QueueItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		if it.VideoID == "" {
			continue
		}
		items = append(items, model.QueueItem{
			VideoID: it.VideoID,
			Title:   it.Title,
			AddedBy: client.DisplayName(),
		})
	}
	if len(items) == 0 {
		return
	}

	update, err := h.roomService.BulkLoad(code, items)
	if err != nil {
		h.logIntentError(client, MessageTypeLoadPlaylist, err)
		return
	}

	h.broadcastQueue(code, MessageTypeQueueUpdated, update, nil)
}

// Sync applies a play, pause or seek intent and relays it to every other
// member. The origin is always excluded: it already applied the change
// locally and re-applying would trigger a feedback seek.
func (h *Hub) Sync(client *Client, msgType MessageType, payload SyncPayload) {
	code := client.RoomCode()
	if code == "" {
		return
	}

	var err error
	switch msgType {
	case MessageTypeSyncPlay:
		err = h.roomService.Play(code, payload.CurrentTime)
	case MessageTypeSyncPause:
		err = h.roomService.Pause(code, payload.CurrentTime)
	case MessageTypeSyncSeek:
		err = h.roomService.Seek(code, payload.CurrentTime)
	}
	if err != nil {
		h.logIntentError(client, msgType, err)
		return
	}

	msg, _ := NewMessage(msgType, &SyncEventPayload{
		CurrentTime: payload.CurrentTime,
		By:          client.DisplayName(),
	})
	h.broadcastToRoom(code, msg, client)
}

// PlaySong selects a queue item. The event goes to the whole room, origin
// included, because everyone must load the newly selected item.
func (h *Hub) PlaySong(client *Client, index int) {
	code := client.RoomCode()
	if code == "" {
		return
	}

	if err := h.roomService.PlayIndex(code, index); err != nil {
		// Stale-UI race: the queue changed between the client reading it
		// and sending the intent. Dropped, not surfaced.
		h.logIntentError(client, MessageTypePlaySong, err)
		return
	}

	msg, _ := NewMessage(MessageTypePlaySong, &PlaySongEventPayload{
		Index: index,
		By:    client.DisplayName(),
	})
	h.broadcastToRoom(code, msg, nil)
}

// NextSong advances the queue. Safe to call redundantly: simultaneous
// end-of-media events from several clients collapse into one transition.
func (h *Hub) NextSong(client *Client) {
	code := client.RoomCode()
	if code == "" {
		return
	}

	index, advanced, err := h.roomService.NextSong(code)
	if err != nil {
		h.logIntentError(client, MessageTypeNextSong, err)
		return
	}
	if !advanced {
		return
	}

	msg, _ := NewMessage(MessageTypePlaySong, &PlaySongEventPayload{
		Index: index,
		By:    client.DisplayName(),
	})
	h.broadcastToRoom(code, msg, nil)
}

// ReorderQueue moves an item and pushes the rebased queue to the room.
func (h *Hub) ReorderQueue(client *Client, payload ReorderQueuePayload) {
	code := client.RoomCode()
	if code == "" {
		return
	}

	update, err := h.roomService.Reorder(code, payload.FromIndex, payload.ToIndex)
	if err != nil {
		h.logIntentError(client, MessageTypeReorderQueue, err)
		return
	}
	if update == nil {
		return
	}

	h.broadcastQueue(code, MessageTypeQueueReordered, update, nil)
}

// Chat relays a chat message to the whole room, sender included.
func (h *Hub) Chat(client *Client, text string) {
	code := client.RoomCode()
	if code == "" || text == "" {
		return
	}

	msg, _ := NewMessage(MessageTypeChat, &ChatEventPayload{
		DisplayName: client.DisplayName(),
		Message:     text,
		Timestamp:   time.Now().UnixMilli(),
	})
	h.broadcastToRoom(code, msg, nil)
}

func (h *Hub) addToRoom(client *Client, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[*Client]bool)
	}
	h.rooms[code][client] = true
}

func (h *Hub) removeFromRoom(client *Client, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if roomClients, ok := h.rooms[code]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, code)
		}
	}
}

// moveToRoom rebinds a connection to a new room. A connection belongs to
// at most one room; when the service reports a departure from a previous
// room, that room is told before the connection appears in the new one.
func (h *Hub) moveToRoom(client *Client, left *service.MemberUpdate, code, displayName string) {
	if left != nil {
		h.removeFromRoom(client, left.RoomCode)

		msg, _ := NewMessage(MessageTypeUserLeft, &MemberEventPayload{
			DisplayName: left.DisplayName,
			Members:     left.Members,
		})
		h.broadcastToRoom(left.RoomCode, msg, nil)
	}

	client.setRoom(code, displayName)
	h.addToRoom(client, code)
}

func (h *Hub) broadcastQueue(code string, msgType MessageType, update *service.QueueUpdate, exclude *Client) {
	msg, _ := NewMessage(msgType, &QueueEventPayload{
		Queue:        update.Queue,
		CurrentIndex: update.CurrentIndex,
		AutoPlay:     update.AutoPlay,
	})
	h.broadcastToRoom(code, msg, exclude)
}

// broadcastToRoom delivers msg to every connection in the room except
// exclude. The member set is captured under the lock, so a connection
// removed before the snapshot never receives the event.
func (h *Hub) broadcastToRoom(code string, msg *Message, exclude *Client) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[code]))
	for client := range h.rooms[code] {
		if client != exclude {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.SendMessage(msg)
	}
}

func (h *Hub) logIntentError(client *Client, msgType MessageType, err error) {
	h.logger.Debug("Intent not applied",
		zap.String("connection_id", client.connectionID),
		zap.String("type", string(msgType)),
		zap.Error(err),
	)
}

// GetStats returns hub statistics
func (h *Hub) GetStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// connected_rooms counts rooms with at least one live connection;
	// the service's active_rooms also includes empty rooms in grace.
	return map[string]int{
		"total_clients":   len(h.clients),
		"connected_rooms": len(h.rooms),
	}
}
