package ws

import (
	"encoding/json"
	"testing"
)

func TestClient_HandleMessage_UnknownType(t *testing.T) {
	hub := createTestHub(t)
	client := createMockClient(hub, "conn-1")

	client.handleMessage(&Message{Type: MessageType("bogus")})

	msg := singleMessage(t, client, MessageTypeError)
	var payload ErrorPayload
	if err := msg.ParsePayload(&payload); err != nil {
		t.Fatalf("Failed to parse payload: %v", err)
	}
	if payload.Code != 400 {
		t.Errorf("Expected code 400, got %d", payload.Code)
	}
}

func TestClient_HandleMessage_MalformedPayloadDropped(t *testing.T) {
	hub := createTestHub(t)
	client := createMockClient(hub, "conn-1")

	client.handleMessage(&Message{
		Type:    MessageTypeSyncPlay,
		Payload: json.RawMessage(`{"currentTime":"twelve"}`),
	})

	// A broken payload is dropped without an error reply.
	if got := receivedMessages(t, client); len(got) != 0 {
		t.Errorf("Expected no reply for a malformed payload, got %d messages", len(got))
	}
}

func TestClient_SetRoom(t *testing.T) {
	hub := createTestHub(t)
	client := createMockClient(hub, "conn-1")

	if client.RoomCode() != "" || client.DisplayName() != "" {
		t.Error("Expected a fresh client to have no room or name")
	}

	client.setRoom("ABC234", "alice")
	if client.RoomCode() != "ABC234" {
		t.Errorf("Expected room ABC234, got %s", client.RoomCode())
	}
	if client.DisplayName() != "alice" {
		t.Errorf("Expected name alice, got %s", client.DisplayName())
	}
	if client.ConnectionID() != "conn-1" {
		t.Errorf("Expected connection id conn-1, got %s", client.ConnectionID())
	}
}

func TestClient_SendMessage_AfterCloseIsDiscarded(t *testing.T) {
	hub := createTestHub(t)
	client := createMockClient(hub, "conn-1")

	client.Close()
	client.Close()

	// A broadcast racing the disconnect must not panic on the closed channel.
	msg, _ := NewMessage(MessageTypeChat, &ChatEventPayload{DisplayName: "alice", Message: "hi"})
	client.SendMessage(msg)
}

func TestClient_SendMessage_FullBufferDoesNotBlock(t *testing.T) {
	hub := createTestHub(t)
	client := createMockClient(hub, "conn-1")
	client.send = make(chan []byte, 1)

	msg, _ := NewMessage(MessageTypeChat, &ChatEventPayload{DisplayName: "alice", Message: "hi"})
	client.SendMessage(msg)
	// The second send finds the buffer full and must return immediately.
	client.SendMessage(msg)

	if got := receivedMessages(t, client); len(got) != 1 {
		t.Errorf("Expected exactly the buffered message, got %d", len(got))
	}
}
