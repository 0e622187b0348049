package services

import (
	"log"
	"sync"
	"time"

	"pehredar/internal/models"

	"github.com/gorilla/websocket"
)

// StreamMessage is one message pushed to websocket clients
type StreamMessage struct {
	Type      string      `json:"type"` // "snapshot", "alert", "pong"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// StreamClient represents a connected websocket client
type StreamClient struct {
	ID   string
	Conn *websocket.Conn
	Send chan StreamMessage
}

// StreamHub fans resource snapshots and raised alerts out to connected
// websocket clients. It subscribes to the sampler as an Observer and to
// the alert manager as an AlertNotifier.
type StreamHub struct {
	mu        sync.RWMutex
	snapshots SnapshotSource

	clients    map[string]*StreamClient
	register   chan *StreamClient
	unregister chan string
	broadcast  chan StreamMessage
	done       chan struct{}
}

// NewStreamHub creates a hub that reads snapshots from the given source
func NewStreamHub(snapshots SnapshotSource) *StreamHub {
	return &StreamHub{
		snapshots:  snapshots,
		clients:    make(map[string]*StreamClient),
		register:   make(chan *StreamClient),
		unregister: make(chan string),
		broadcast:  make(chan StreamMessage, 256),
		done:       make(chan struct{}),
	}
}

// Start launches the hub's event loop
func (h *StreamHub) Start() {
	go h.run()
}

// Stop terminates the event loop
func (h *StreamHub) Stop() {
	close(h.done)
}

func (h *StreamHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client connected: %s (total: %d)", client.ID, total)

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client disconnected: %s (total: %d)", clientID, total)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// MetricsUpdated broadcasts the current snapshot after each completed
// sampler update
func (h *StreamHub) MetricsUpdated() {
	snapshot := h.snapshots.Snapshot()
	h.Broadcast(StreamMessage{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Data:      snapshot,
	})
}

// AlertRaised broadcasts a raised alert to all clients
func (h *StreamHub) AlertRaised(alert models.Alert) {
	h.Broadcast(StreamMessage{
		Type:      "alert",
		Timestamp: time.Now(),
		Data:      alert,
	})
}

// Broadcast queues a message for all connected clients; it never blocks
func (h *StreamHub) Broadcast(msg StreamMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// channel full, drop the message
	}
}

// Register adds a new client to the hub
func (h *StreamHub) Register(client *StreamClient) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *StreamHub) Unregister(clientID string) {
	h.unregister <- clientID
}
