package live

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	UserID   string
	Username string

	// rooms is only touched by the hub goroutine after registration.
	rooms map[string]bool
	send  chan []byte
}

// ServeWS upgrades the connection for a member's live feed. The token
// rides in the query string because browsers cannot set headers on
// WebSocket requests.
func ServeWS(hub *Hub, db *sql.DB, rdb *redis.Client, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(token, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		valid, err := redisc.SessionValid(rdb, claims.ID)
		if err != nil || !valid {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}

		rooms := make(map[string]bool)
		roomIDs, err := database.GetRoomIDsForUser(db, claims.UserID)
		if err == nil {
			for _, id := range roomIDs {
				rooms[id] = true
			}
		}

		client := &Client{
			hub:      hub,
			conn:     conn,
			UserID:   claims.UserID,
			Username: claims.Username,
			rooms:    rooms,
			send:     make(chan []byte, 256),
		}

		hub.register <- client
		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := redisc.RefreshPresence(c.hub.Redis, c.UserID); err != nil {
			slog.Debug("failed to refresh presence", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("ws read error", "error", err, "user_id", c.UserID)
			}
			break
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// The feed is server push. The only client message is an application-level
// ping, which browser clients use since they cannot send protocol pings.
func (c *Client) handleMessage(raw []byte) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return
	}

	switch ev.Type {
	case TypePing:
		data, _ := NewEvent(EventPong, nil)
		select {
		case c.send <- data:
		default:
		}
	default:
		c.sendError("unknown event type", "UNSUPPORTED")
	}
}

func (c *Client) sendError(message, code string) {
	data, _ := NewEvent(EventError, ErrorPayload{Message: message, Code: code})
	select {
	case c.send <- data:
	default:
	}
}
