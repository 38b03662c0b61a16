package server

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dooshek/clipd/internal/store"
)

func startTestHub(t *testing.T) (*Hub, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "db.json"))
	h := NewHub(st)
	if err := h.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("failed to start hub: %v", err)
	}
	t.Cleanup(h.Stop)
	return h, st
}

func dialTestHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+h.Addr()+"/events", nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("event payload is not valid JSON: %v", err)
	}
	return event
}

func TestHubSendsCurrentHistoryOnConnect(t *testing.T) {
	h, st := startTestHub(t)
	st.Add(store.NewEntry(store.KindText, "existing"))

	conn := dialTestHub(t, h)

	event := readEvent(t, conn)
	if event.Type != "clipboard-changed" {
		t.Fatalf("unexpected event type %q", event.Type)
	}
	if len(event.History) != 1 || event.History[0].Content != "existing" {
		t.Fatalf("expected current history on connect, got %#v", event.History)
	}
}

func TestHubBroadcastsMutations(t *testing.T) {
	h, st := startTestHub(t)
	conn := dialTestHub(t, h)

	// Initial snapshot for the new subscriber
	if event := readEvent(t, conn); len(event.History) != 0 {
		t.Fatalf("expected empty initial history, got %#v", event.History)
	}

	st.Add(store.NewEntry(store.KindText, "fresh"))

	event := readEvent(t, conn)
	if len(event.History) != 1 || event.History[0].Content != "fresh" {
		t.Fatalf("expected broadcast after Add, got %#v", event.History)
	}
	if event.Timestamp == 0 {
		t.Fatalf("expected a timestamp on the event")
	}
}

func TestHubServesMultipleClients(t *testing.T) {
	h, st := startTestHub(t)
	conn1 := dialTestHub(t, h)
	conn2 := dialTestHub(t, h)

	readEvent(t, conn1)
	readEvent(t, conn2)

	st.Add(store.NewEntry(store.KindText, "fan out"))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		if len(event.History) != 1 || event.History[0].Content != "fan out" {
			t.Fatalf("expected both clients to receive the broadcast, got %#v", event.History)
		}
	}
}

func TestHubAddrReportsBoundPort(t *testing.T) {
	h, _ := startTestHub(t)
	if h.Addr() == "" || h.Addr() == "127.0.0.1:0" {
		t.Fatalf("expected a concrete bound address, got %q", h.Addr())
	}
}
