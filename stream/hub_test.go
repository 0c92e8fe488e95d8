package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"market-pulse/models"
)

// testHub starts a hub behind a websocket endpoint and returns a dial
// function for connecting test clients.
func testHub(t *testing.T) (*Hub, func() *websocket.Conn) {
	t.Helper()

	hub := NewHub()
	t.Cleanup(func() { hub.Stop() })

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		if err := hub.Register(conn); err != nil {
			return
		}
		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(server.Close)

	dial := func() *websocket.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	return hub, dial
}

func waitForClientCount(hub *Hub, want int) bool {
	for i := 0; i < 100; i++ {
		if hub.ClientCount() == want {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func testSnapshot() *models.SentimentSnapshot {
	result := models.SentimentResult{
		Score:        42.5,
		Label:        models.LabelBullish,
		Components:   models.ComponentScores{Breadth: 55, Momentum: 40, Trend: 38, Volume: 30},
		Confidence:   0.875,
		Timestamp:    time.Now().UTC(),
		AnalysisDate: "2026-08-21",
	}
	return models.NewSentimentSnapshot("MASI", models.SourceSynthetic, result)
}

func readFrame(t *testing.T, conn *websocket.Conn) SnapshotFrame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var frame SnapshotFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	return frame
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub, dial := testHub(t)

	conn := dial()
	if !waitForClientCount(hub, 1) {
		t.Fatal("client never registered")
	}

	hub.Broadcast(testSnapshot())

	frame := readFrame(t, conn)
	if frame.Event != EventSnapshot {
		t.Errorf("event = %q, want %q", frame.Event, EventSnapshot)
	}
	if frame.Snapshot == nil {
		t.Fatal("frame has no snapshot")
	}
	if frame.Snapshot.Symbol != "MASI" {
		t.Errorf("symbol = %q, want MASI", frame.Snapshot.Symbol)
	}
	if frame.Snapshot.Result.Score != 42.5 {
		t.Errorf("score = %v, want 42.5", frame.Snapshot.Result.Score)
	}
	if frame.Snapshot.Result.Label != models.LabelBullish {
		t.Errorf("label = %q, want %q", frame.Snapshot.Result.Label, models.LabelBullish)
	}
}

func TestHub_MultipleClientsReceiveBroadcast(t *testing.T) {
	hub, dial := testHub(t)

	conn1 := dial()
	conn2 := dial()
	if !waitForClientCount(hub, 2) {
		t.Fatal("clients never registered")
	}

	hub.Broadcast(testSnapshot())

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		frame := readFrame(t, conn)
		if frame.Snapshot == nil || frame.Snapshot.Result.Score != 42.5 {
			t.Errorf("client %d received wrong frame: %+v", i, frame)
		}
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub, dial := testHub(t)

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("initial count = %d, want 0", got)
	}

	conn1 := dial()
	if !waitForClientCount(hub, 1) {
		t.Fatal("first client never registered")
	}

	dial()
	if !waitForClientCount(hub, 2) {
		t.Fatal("second client never registered")
	}

	conn1.Close()
	if !waitForClientCount(hub, 1) {
		t.Fatal("closed client never unregistered")
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub, _ := testHub(t)
	hub.Broadcast(testSnapshot())
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, dial := testHub(t)

	conn := dial()
	if !waitForClientCount(hub, 1) {
		t.Fatal("client never registered")
	}

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected closed connection after stop")
	}
}

// connPair returns the server and client side of one websocket connection.
func connPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *websocket.Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, client
}

func TestHub_MaxClients(t *testing.T) {
	hub := NewHub()
	t.Cleanup(func() { hub.Stop() })

	for i := 0; i < maxClients; i++ {
		serverConn, _ := connPair(t)
		if err := hub.Register(serverConn); err != nil {
			t.Fatalf("client %d should register: %v", i, err)
		}
	}

	if got := hub.ClientCount(); got != maxClients {
		t.Fatalf("count = %d, want %d", got, maxClients)
	}

	serverConn, _ := connPair(t)
	err := hub.Register(serverConn)
	if err == nil {
		t.Fatal("expected rejection beyond max clients")
	}
	if !strings.Contains(err.Error(), "max stream clients") {
		t.Errorf("unexpected error: %v", err)
	}
}
