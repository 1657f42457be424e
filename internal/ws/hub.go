// Package ws broadcasts frame results and alerts to WebSocket clients
// so a dashboard can follow a replay live.
package ws

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vigil/internal/engine"
)

// Hub manages WebSocket connections for real-time alert streaming.
type Hub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	fmt.Printf("[WS] Client registered (total: %d)\n", len(h.clients))
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		fmt.Printf("[WS] Client unregistered\n")
	}
}

// HasClients returns true if any client is connected.
func (h *Hub) HasClients() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) > 0
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client. Failed connections are
// dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			fmt.Printf("[WS] Error sending to client: %v\n", err)
			h.Unregister(conn)
			conn.Close()
		}
	}
}

// BroadcastJSON marshals and broadcasts a message value.
func (h *Hub) BroadcastJSON(msg any) {
	if !h.HasClients() {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		fmt.Printf("[WS] Error marshaling message: %v\n", err)
		return
	}
	h.Broadcast(data)
}

// OnFrameResult implements engine.ResultHandler: one frame message per
// processed frame, plus one alert message per approved alert.
func (h *Hub) OnFrameResult(result *engine.FrameResult) {
	if !h.HasClients() {
		return
	}

	msg := NewFrameMessage(result.CamName, result.FrameNum, result.Timestamp)
	msg.Objects = len(result.Objects)
	msg.Positives = result.Positives
	for idx := range result.AlertRegions {
		msg.AlertRegions = append(msg.AlertRegions, idx)
	}
	sort.Ints(msg.AlertRegions)
	h.BroadcastJSON(msg)

	for _, a := range result.Alerts {
		h.BroadcastJSON(NewAlertMessage(a.CamName, a.RuleName, a.RegionIndex, a.FrameNum, a.Timestamp))
	}
}

var _ engine.ResultHandler = (*Hub)(nil)
