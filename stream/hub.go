// Package stream pushes freshly computed sentiment snapshots to websocket
// clients. A single hub goroutine owns the client set and processes commands
// from a channel, so no locking is needed. Each client gets a buffered writer
// goroutine; clients that cannot keep up are dropped.
package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"market-pulse/models"
	"market-pulse/observability"
)

const maxClients = 64

// EventSnapshot marks frames carrying a new sentiment snapshot.
const EventSnapshot = "snapshot"

// SnapshotFrame is the JSON message pushed to connected clients whenever a
// fresh sentiment snapshot is computed.
type SnapshotFrame struct {
	Event    string                    `json:"event"`
	Snapshot *models.SentimentSnapshot `json:"snapshot"`
}

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// clientWriter drains a per-connection send buffer so one stalled socket
// cannot block the hub goroutine.
type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// Hub fans sentiment snapshots out to every connected websocket client.
type Hub struct {
	cmdCh   chan hubCmd
	clients map[*websocket.Conn]*clientWriter
}

// NewHub starts the hub goroutine and returns the hub.
func NewHub() *Hub {
	hub := &Hub{
		cmdCh:   make(chan hubCmd, 256),
		clients: make(map[*websocket.Conn]*clientWriter),
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= maxClients {
		observability.Warn("rejecting stream client, hub full", "max_clients", maxClients)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max stream clients (%d) reached", maxClients)
		return
	}

	h.clients[c.conn] = newClientWriter(c.conn)
	observability.Info("stream client connected", "clients", len(h.clients))
	observability.GetMetrics().SetWebsocketClients("market", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	observability.Info("stream client disconnected", "clients", len(h.clients))
	observability.GetMetrics().SetWebsocketClients("market", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		observability.Warn("dropping slow stream client")
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	observability.GetMetrics().SetWebsocketClients("market", 0)
}

// Register adds a websocket connection to the hub. The connection is closed
// and an error returned when the hub is already at capacity.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}
	return <-errCh
}

// Unregister removes a connection and stops its writer.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Broadcast pushes a snapshot frame to every connected client.
func (h *Hub) Broadcast(snap *models.SentimentSnapshot) {
	data, err := json.Marshal(SnapshotFrame{Event: EventSnapshot, Snapshot: snap})
	if err != nil {
		observability.Error("failed to marshal stream frame", "error", err)
		return
	}
	h.cmdCh <- cmdBroadcast{data: data}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

// Stop disconnects every client and shuts the hub goroutine down.
func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
}
