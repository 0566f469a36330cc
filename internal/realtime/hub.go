package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Client is one live connection. The network conn itself is managed by the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Notification types pushed to clients.
const (
	HobbyCreated   = "hobby_created"
	EventCreated   = "event_created"
	EventUpdated   = "event_updated"
	EventDeleted   = "event_deleted"
	AttendeeJoined = "attendee_joined"
	AttendeeLeft   = "attendee_left"
)

// Notification is the JSON message written to sockets.
type Notification struct {
	Type     string `json:"type"`
	EntityID string `json:"entityId"`
	ActorID  string `json:"actorId"`
	Version  int    `json:"version"`
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// GetHub returns the process-wide hub.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = NewHub()
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Connections returns the number of registered clients.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.userIDToClients {
		n += len(clients)
	}
	return n
}

// Broadcast sends a message to all clients of a user.
// Failed sends are left for the owning handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userIDToClients[userID] {
		c.Send(message)
	}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.userIDToClients {
		for c := range clients {
			c.Send(message)
		}
	}
}

// Notify encodes n and delivers it to the given users, or to everyone when userIDs is empty.
func (h *Hub) Notify(n Notification, userIDs ...string) {
	if n.Version == 0 {
		n.Version = 1
	}
	msg, err := json.Marshal(n)
	if err != nil {
		slog.Warn("Failed to encode notification", "type", n.Type, "error", err)
		return
	}
	if len(userIDs) == 0 {
		h.BroadcastAll(msg)
		return
	}
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		h.Broadcast(id, msg)
	}
}
