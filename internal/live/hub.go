package live

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

type RoomEvent struct {
	RoomID string
	Data   []byte
}

// Hub tracks the WebSocket clients connected to this instance. Events flow
// in through Redis pub/sub, so hubs on every instance deliver the same
// event to their own clients.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliver    chan *RoomEvent

	DB    *sql.DB
	Redis *redis.Client
}

func NewHub(db *sql.DB, redisClient *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *RoomEvent, 256),
		DB:         db,
		Redis:      redisClient,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok {
				close(old.send)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			slog.Info("client connected", "user_id", client.UserID, "username", client.Username)
			if err := redisc.SetOnline(h.Redis, client.UserID); err != nil {
				slog.Error("failed to set presence", "error", err)
			}
			h.broadcastPresence(client.UserID, client.Username, "online")

		case client := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[client.UserID]; ok && existing == client {
				delete(h.clients, client.UserID)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("client disconnected", "user_id", client.UserID)
			if err := redisc.SetOffline(h.Redis, client.UserID); err != nil {
				slog.Error("failed to clear presence", "error", err)
			}
			h.broadcastPresence(client.UserID, client.Username, "offline")

		case ev := <-h.deliver:
			eventType, userID := peekEvent(ev.Data)

			// A joining member must be subscribed before the event fans
			// out, so they see their own join.
			if eventType == EventMemberJoined {
				h.subscribe(userID, ev.RoomID)
			}

			h.fanOut(ev)

			// Members who left or lost the room stop receiving after this
			// event, not before it.
			switch eventType {
			case EventMemberLeft, EventMemberRemoved:
				h.unsubscribe(userID, ev.RoomID)
			case EventRoomDeleted:
				h.dropRoom(ev.RoomID)
			}
		}
	}
}

// Publish pushes an event through Redis. It comes back via Deliver on
// every instance, this one included, which is the single delivery path.
func (h *Hub) Publish(roomID, eventType string, payload interface{}) {
	data, err := NewEvent(eventType, payload)
	if err != nil {
		slog.Error("failed to encode event", "type", eventType, "error", err)
		return
	}
	if err := redisc.PublishToRoom(h.Redis, roomID, data); err != nil {
		slog.Error("failed to publish event", "type", eventType, "room_id", roomID, "error", err)
	}
}

// Deliver is the handler SubscribeRooms runs for every pub/sub message.
func (h *Hub) Deliver(roomID string, data []byte) {
	h.deliver <- &RoomEvent{RoomID: roomID, Data: data}
}

func (h *Hub) fanOut(ev *RoomEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, client := range h.clients {
		if _, ok := client.rooms[ev.RoomID]; ok {
			select {
			case client.send <- ev.Data:
			default:
				close(client.send)
				delete(h.clients, userID)
			}
		}
	}
}

func (h *Hub) subscribe(userID, roomID string) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	if client, ok := h.clients[userID]; ok {
		client.rooms[roomID] = true
	}
	h.mu.Unlock()
}

func (h *Hub) unsubscribe(userID, roomID string) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	if client, ok := h.clients[userID]; ok {
		delete(client.rooms, roomID)
	}
	h.mu.Unlock()
}

func (h *Hub) dropRoom(roomID string) {
	h.mu.Lock()
	for _, client := range h.clients {
		delete(client.rooms, roomID)
	}
	h.mu.Unlock()
}

// peekEvent extracts the type and, for member events, the affected user.
func peekEvent(data []byte) (eventType, userID string) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return "", ""
	}
	switch ev.Type {
	case EventMemberJoined, EventMemberLeft, EventMemberRemoved:
		var p MemberEventPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return ev.Type, ""
		}
		return ev.Type, p.UserID
	}
	return ev.Type, ""
}

func (h *Hub) broadcastPresence(userID, username, status string) {
	data, err := NewEvent(EventPresenceUpdate, PresenceUpdatePayload{
		UserID:   userID,
		Username: username,
		Status:   status,
	})
	if err != nil {
		return
	}
	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[string]*Client)
}
