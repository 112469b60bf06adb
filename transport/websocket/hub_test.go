package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/puzzle-search/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func readMessage(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data := <-ch:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected broadcast buffer %d, got %d", engine.WebSocketBufferSize, cap(hub.broadcast))
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub, "s1")
	c2 := newTestClient(hub, "s1")

	hub.registerClient(c1)
	hub.registerClient(c2)
	if hub.ClientCount("s1") != 2 {
		t.Fatalf("Expected 2 clients, got %d", hub.ClientCount("s1"))
	}

	hub.unregisterClient(c1)
	if hub.ClientCount("s1") != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount("s1"))
	}
	if _, ok := <-c1.send; ok {
		t.Error("Unregistered client's send channel should be closed")
	}

	// Unregistering twice is a no-op.
	hub.unregisterClient(c1)

	hub.unregisterClient(c2)
	if _, exists := hub.sessions["s1"]; exists {
		t.Error("Empty session should be cleaned up")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	target := newTestClient(hub, "target")
	other := newTestClient(hub, "other")
	hub.register <- target
	hub.register <- other

	state := &engine.GameState{
		Kind:  engine.KindTiles,
		Board: []int{1, 2, 3, 0},
		Size:  2,
		Key:   "1,2,3,0",
	}
	hub.BroadcastToSession("target", state)

	// The hub works on a snapshot.
	state.Board[0] = 99

	message := readMessage(t, target.send)
	if message.SessionID != "target" {
		t.Errorf("Expected session target, got %s", message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
	}
	if message.GameState == nil || message.GameState.Board[0] != 1 {
		t.Errorf("Expected snapshot board, got %+v", message.GameState)
	}
	if message.Timestamp.IsZero() {
		t.Error("Expected timestamp")
	}

	select {
	case <-other.send:
		t.Error("Other session should not receive the broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastEventOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	client := newTestClient(hub, "replay")
	hub.register <- client

	for i := range 5 {
		hub.BroadcastEvent("replay", EventReplayStep, map[string]int{"index": i})
	}
	hub.BroadcastToSession("replay", &engine.GameState{Kind: engine.KindPitchers})

	for i := range 5 {
		message := readMessage(t, client.send)
		if message.Event != EventReplayStep {
			t.Fatalf("Step %d: expected %s, got %s", i, EventReplayStep, message.Event)
		}
		data, _ := message.Data.(map[string]any)
		if int(data["index"].(float64)) != i {
			t.Errorf("Expected index %d, got %v", i, data["index"])
		}
	}
	if message := readMessage(t, client.send); message.Event != EventStateUpdate {
		t.Errorf("Expected final %s, got %s", EventStateUpdate, message.Event)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: EventStateUpdate})

	if hub.ClientCount("slow") != 0 {
		t.Error("Client with a full buffer should be dropped")
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newTestClient(hub, "bye")
	hub.register <- client
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client channels should be closed on shutdown")
	}
}

func TestWebSocketEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	initial := &engine.GameState{Kind: engine.KindTiles, Key: "1,2,0,3"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), initial)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	read := func() Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	}

	if first := read(); first.GameState == nil || first.GameState.Key != "1,2,0,3" {
		t.Fatalf("Expected initial state frame, got %+v", first)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("ws-test") != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastToSession("ws-test", &engine.GameState{Kind: engine.KindTiles, Key: "1,2,3,0", Solved: true})
	update := read()
	if update.Event != EventStateUpdate || !update.GameState.Solved {
		t.Errorf("Expected solved state_update, got %+v", update)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount("ws-test") != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount("ws-test") != 0 {
		t.Error("Client should be unregistered after close")
	}
}
