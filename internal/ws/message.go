package ws

import (
	"encoding/json"
	"time"

	"github.com/rushikeshnarwade/sync-beats/internal/model"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Client -> Server intents
	MessageTypeCreateRoom   MessageType = "create-room"
	MessageTypeJoinRoom     MessageType = "join-room"
	MessageTypeAddToQueue   MessageType = "add-to-queue"
	MessageTypeLoadPlaylist MessageType = "load-playlist"
	MessageTypeReorderQueue MessageType = "reorder-queue"
	MessageTypeNextSong     MessageType = "next-song"

	// Bidirectional: accepted as intents and relayed as events.
	// sync-play/pause/seek are relayed to everyone except the origin;
	// play-song goes to the whole room because every client, origin
	// included, must (re)load the newly selected item.
	MessageTypeSyncPlay  MessageType = "sync-play"
	MessageTypeSyncPause MessageType = "sync-pause"
	MessageTypeSyncSeek  MessageType = "sync-seek"
	MessageTypePlaySong  MessageType = "play-song"
	MessageTypeChat      MessageType = "chat-message"

	// Server -> Client events
	MessageTypeRoomCreated    MessageType = "room-created"
	MessageTypeRoomJoined     MessageType = "room-joined"
	MessageTypeUserJoined     MessageType = "user-joined"
	MessageTypeUserLeft       MessageType = "user-left"
	MessageTypeQueueUpdated   MessageType = "queue-updated"
	MessageTypeQueueReordered MessageType = "queue-reordered"
	MessageTypeError          MessageType = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// CreateRoomPayload represents a create-room intent
type CreateRoomPayload struct {
	DisplayName string `json:"displayName"`
}

// JoinRoomPayload represents a join-room intent
type JoinRoomPayload struct {
	DisplayName string `json:"displayName"`
	Code        string `json:"code"`
}

// RoomCreatedPayload acknowledges a create-room intent
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// AddToQueuePayload represents an add-to-queue intent
type AddToQueuePayload struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
}

// LoadPlaylistPayload represents a bulk playlist import
type LoadPlaylistPayload struct {
	Items []AddToQueuePayload `json:"items"`
}

// SyncPayload carries a transport position from the origin client
type SyncPayload struct {
	CurrentTime float64 `json:"currentTime"`
}

// SyncEventPayload is a relayed transport-position change
type SyncEventPayload struct {
	CurrentTime float64 `json:"currentTime"`
	By          string  `json:"by"`
}

// PlaySongPayload represents a play-song intent
type PlaySongPayload struct {
	Index int `json:"index"`
}

// PlaySongEventPayload is a relayed media-selection change
type PlaySongEventPayload struct {
	Index int    `json:"index"`
	By    string `json:"by"`
}

// ReorderQueuePayload represents a reorder-queue intent
type ReorderQueuePayload struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// ChatPayload represents an outgoing chat message
type ChatPayload struct {
	Message string `json:"message"`
}

// ChatEventPayload is a relayed chat message
type ChatEventPayload struct {
	DisplayName string `json:"displayName"`
	Message     string `json:"message"`
	Timestamp   int64  `json:"timestamp"`
}

// MemberEventPayload represents a user-joined or user-left broadcast
type MemberEventPayload struct {
	DisplayName string   `json:"displayName"`
	Members     []string `json:"members"`
}

// QueueEventPayload is the full-queue snapshot after a mutation
type QueueEventPayload struct {
	Queue        []model.QueueItem `json:"queue"`
	CurrentIndex int               `json:"currentIndex"`
	AutoPlay     bool              `json:"autoPlay,omitempty"`
}

// ErrorPayload represents error message
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a new message
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now(),
	}, nil
}

// NewErrorMessage creates a new error message
func NewErrorMessage(code int, message string) (*Message, error) {
	return NewMessage(MessageTypeError, &ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// ParsePayload parses message payload into the given type
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}
