package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-backend/internal/models"
	"chat-backend/internal/observability"
)

// Hub is the room registry: it maps canonical chat identifiers to the set of
// live websocket connections registered for them. It is the only shared
// mutable state in the process. Rooms are created on first registration and
// removed as soon as their last connection leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

// AddClient registers a connection for a chat. The caller must already have
// authenticated and authorized it.
func (h *Hub) AddClient(chatID models.ChatID, conn *websocket.Conn, info ConnInfo) {
	key := chatID.String()
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[key]
	if !ok {
		r = &room{conns: make(map[*websocket.Conn]ConnInfo)}
		h.rooms[key] = r
	}
	r.mu.Lock()
	r.conns[conn] = info
	r.mu.Unlock()
}

// RemoveClient deregisters a connection. It is idempotent: removing an
// already-absent connection is a no-op, which covers the race where a
// disconnect fires after a failed broadcast write already cleaned it up.
// The room entry itself is dropped once its set drains.
func (h *Hub) RemoveClient(chatID models.ChatID, conn *websocket.Conn) {
	key := chatID.String()
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[key]
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.conns, conn)
	empty := len(r.conns) == 0
	r.mu.Unlock()
	if empty {
		delete(h.rooms, key)
	}
}

// BroadcastMessage fans a "message created" event out to every connection in
// the chat, the sender's own included.
func (h *Hub) BroadcastMessage(chatID models.ChatID, msg models.Message) {
	h.broadcast(chatID, models.ChatEvent{Type: "message", Message: &msg})
}

// BroadcastDeletion fans a "message deleted" event out; only the message id
// travels.
func (h *Hub) BroadcastDeletion(chatID models.ChatID, messageID int) {
	h.broadcast(chatID, models.ChatEvent{Type: "delete", ID: messageID})
}

// broadcast delivers one event to a snapshot of the room. A write failure is
// an implicit disconnect: the connection is closed and deregistered as part
// of the same pass, and delivery to the remaining connections continues.
func (h *Hub) broadcast(chatID models.ChatID, event models.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	for conn, info := range h.snapshot(chatID.String()) {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(chatID, conn)
			publishLifecycleEvent(context.Background(), chatID, info, "ws_error", err.Error())
			observability.IncWSEvent(chatID.Kind.String(), "ws_error")
		}
	}
}

func (h *Hub) snapshot(key string) map[*websocket.Conn]ConnInfo {
	h.mu.RLock()
	r, ok := h.rooms[key]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make(map[*websocket.Conn]ConnInfo, len(r.conns))
	for conn, info := range r.conns {
		conns[conn] = info
	}
	return conns
}

// RoomSize reports how many connections a chat currently has.
func (h *Hub) RoomSize(chatID models.ChatID) int {
	h.mu.RLock()
	r, ok := h.rooms[chatID.String()]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll tears the registry down at shutdown by closing every live
// connection and dropping all rooms.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, r := range h.rooms {
		r.mu.Lock()
		for conn := range r.conns {
			conn.Close()
		}
		r.mu.Unlock()
		delete(h.rooms, key)
	}
}

func publishLifecycleEvent(ctx context.Context, chatID models.ChatID, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"chat_id":     chatID.String(),
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id": info.UserID,
			"ip":      info.IP,
		},
	}

	headers := observability.EventHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events."+chatID.String(), observability.AuditEvent{
		Kind:    "ws_events",
		Name:    event,
		Payload: payload,
	}, headers)
}
