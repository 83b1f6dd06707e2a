// Command simulate drives a two-client session against a running server:
// it creates a room, joins it from a second connection, queues a video
// and exchanges sync events, printing everything received.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rushikeshnarwade/sync-beats/internal/ws"
)

var addr = flag.String("addr", "localhost:8080", "server address")

func main() {
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)
	log.Printf("Connecting to %s", url)

	alice := dial(url, "alice")
	defer alice.Close()
	bob := dial(url, "bob")
	defer bob.Close()

	// Alice creates a room.
	send(alice, ws.MessageTypeCreateRoom, ws.CreateRoomPayload{DisplayName: "alice"}, "req-create")
	created := waitFor(alice, ws.MessageTypeRoomCreated)

	var room ws.RoomCreatedPayload
	mustParse(created, &room)
	log.Printf("[alice] room created: %s", room.Code)

	// Bob joins it.
	send(bob, ws.MessageTypeJoinRoom, ws.JoinRoomPayload{DisplayName: "bob", Code: room.Code}, "req-join")
	waitFor(bob, ws.MessageTypeRoomJoined)
	waitFor(alice, ws.MessageTypeUserJoined)
	log.Printf("[bob] joined room %s", room.Code)

	// Alice queues a video; both sides see the update.
	send(alice, ws.MessageTypeAddToQueue, ws.AddToQueuePayload{VideoID: "dQw4w9WgXcQ", Title: "Test Video"}, "")
	waitFor(alice, ws.MessageTypeQueueUpdated)
	waitFor(bob, ws.MessageTypeQueueUpdated)
	log.Printf("queue updated on both connections")

	// Alice plays; only Bob gets the event.
	send(alice, ws.MessageTypeSyncPlay, ws.SyncPayload{CurrentTime: 0}, "")
	waitFor(bob, ws.MessageTypeSyncPlay)
	log.Printf("[bob] received sync-play")

	// Bob scrubs; only Alice gets the event.
	send(bob, ws.MessageTypeSyncSeek, ws.SyncPayload{CurrentTime: 42.5}, "")
	seek := waitFor(alice, ws.MessageTypeSyncSeek)

	var payload ws.SyncEventPayload
	mustParse(seek, &payload)
	log.Printf("[alice] received sync-seek to %.1f by %s", payload.CurrentTime, payload.By)

	log.Println("Simulation complete")
}

func dial(url, name string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect %s: %v", name, err)
	}
	return conn
}

func send(conn *websocket.Conn, msgType ws.MessageType, payload interface{}, requestID string) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		log.Fatalf("Failed to build %s: %v", msgType, err)
	}
	msg.RequestID = requestID

	data, err := json.Marshal(msg)
	if err != nil {
		log.Fatalf("Failed to marshal %s: %v", msgType, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Fatalf("Failed to send %s: %v", msgType, err)
	}
}

// waitFor reads until the wanted message type arrives, skipping
// unrelated broadcasts.
func waitFor(conn *websocket.Conn, want ws.MessageType) *ws.Message {
	deadline := time.Now().Add(5 * time.Second)
	conn.SetReadDeadline(deadline)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Failed waiting for %s: %v", want, err)
		}

		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Fatalf("Failed to decode message: %v", err)
		}
		if msg.Type == ws.MessageTypeError {
			var e ws.ErrorPayload
			mustParse(&msg, &e)
			log.Fatalf("Server error while waiting for %s: %d %s", want, e.Code, e.Message)
		}
		if msg.Type == want {
			return &msg
		}
	}
}

func mustParse(msg *ws.Message, out interface{}) {
	if err := msg.ParsePayload(out); err != nil {
		log.Fatalf("Failed to parse %s payload: %v", msg.Type, err)
	}
}
