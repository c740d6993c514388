package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
	"github.com/Kent0710/classroom-announcement-app/internal/live"
	"github.com/Kent0710/classroom-announcement-app/internal/models"
	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

// ListRooms returns the caller's dashboard: rooms they own and rooms
// they joined as admin or member.
func ListRooms(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(auth.UserIDKey).(string)

		owned, err := database.GetOwnedRooms(db, userID)
		if err != nil {
			slog.Error("failed to list owned rooms", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		joined, err := database.GetJoinedRooms(db, userID)
		if err != nil {
			slog.Error("failed to list joined rooms", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"owned":  owned,
			"joined": joined,
		})
	}
}

func CreateRoom(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(auth.UserIDKey).(string)

		var req struct {
			Name string `json:"name"`
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if len(name) > 100 {
			writeError(w, http.StatusBadRequest, "name must be 100 characters or fewer")
			return
		}

		code := ""
		if strings.TrimSpace(req.Code) != "" {
			normalized, ok := models.NormalizeRoomCode(req.Code)
			if !ok {
				writeError(w, http.StatusBadRequest, "code must be exactly 6 letters or digits")
				return
			}
			code = normalized
		}

		room, err := database.CreateRoom(db, name, code, userID)
		if err == database.ErrDuplicate {
			writeError(w, http.StatusConflict, "room name or code already in use")
			return
		}
		if err != nil {
			slog.Error("failed to create room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("room created", "room_id", room.ID, "code", room.Code, "user_id", userID)
		writeJSON(w, http.StatusCreated, room)
	}
}

// GetRoom returns the room with its members grouped by role. Online
// state comes from the presence set in Redis.
func GetRoom(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}

		room, err := database.GetRoomByID(db, roomID)
		if err != nil || room == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		members, err := database.GetRoomMembers(db, roomID)
		if err != nil {
			slog.Error("failed to get room members", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		online, err := redisc.OnlineSet(rdb)
		if err != nil {
			slog.Warn("failed to get online users", "error", err)
			online = map[string]bool{}
		}

		var owner *models.Member
		admins := []models.Member{}
		regular := []models.Member{}
		for i := range members {
			members[i].Online = online[members[i].UserID]
			switch members[i].Role {
			case models.RoleOwner:
				owner = &members[i]
			case models.RoleAdmin:
				admins = append(admins, members[i])
			default:
				regular = append(regular, members[i])
			}
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"room":     room,
			"role":     membership.Role,
			"is_owner": membership.IsOwner(),
			"is_admin": membership.IsAdmin(),
			"owner":    owner,
			"admins":   admins,
			"members":  regular,
		})
	}
}

func UpdateRoom(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !membership.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admins can edit this room")
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if len(name) > 100 {
			writeError(w, http.StatusBadRequest, "name must be 100 characters or fewer")
			return
		}

		room, err := database.UpdateRoomName(db, roomID, name)
		if err == database.ErrDuplicate {
			writeError(w, http.StatusConflict, "room name already in use")
			return
		}
		if err != nil {
			slog.Error("failed to update room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if room == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		hub.RoomRenamed(room)
		writeJSON(w, http.StatusOK, room)
	}
}

func DeleteRoom(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !membership.IsOwner() {
			writeError(w, http.StatusForbidden, "only the room owner can delete this room")
			return
		}

		room, err := database.GetRoomByID(db, roomID)
		if err != nil || room == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		if err := database.DeleteRoom(db, roomID); err != nil {
			slog.Error("failed to delete room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("room deleted", "room_id", roomID, "user_id", userID)
		hub.RoomDeleted(roomID, room.Name)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// JoinRoom adds the caller to the room matching the submitted join code.
// Owners and existing members get the room back without a new membership.
func JoinRoom(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(auth.UserIDKey).(string)
		username := r.Context().Value(auth.UsernameKey).(string)

		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		code, ok := models.NormalizeRoomCode(req.Code)
		if !ok {
			writeError(w, http.StatusBadRequest, "code must be exactly 6 letters or digits")
			return
		}

		room, err := database.GetRoomByCode(db, code)
		if err != nil {
			slog.Error("failed to look up room code", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if room == nil {
			writeError(w, http.StatusNotFound, "room with this code does not exist")
			return
		}

		existing, err := database.GetMembership(db, room.ID, userID)
		if err != nil {
			slog.Error("failed to check membership", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if existing != nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"room":   room,
				"role":   existing.Role,
				"joined": false,
			})
			return
		}

		if err := database.AddMember(db, room.ID, userID); err != nil {
			// A concurrent join already created the row.
			if err == database.ErrDuplicate {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"room":   room,
					"role":   models.RoleMember,
					"joined": false,
				})
				return
			}
			slog.Error("failed to join room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("member joined", "room_id", room.ID, "user_id", userID)
		hub.MemberJoined(room.ID, userID, username)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"room":   room,
			"role":   models.RoleMember,
			"joined": true,
		})
	}
}

func LeaveRoom(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)
		username := r.Context().Value(auth.UsernameKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if membership.IsOwner() {
			writeError(w, http.StatusForbidden, "the room owner cannot leave the room")
			return
		}

		if err := database.RemoveMember(db, roomID, userID); err != nil {
			slog.Error("failed to leave room", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		hub.MemberLeft(roomID, userID, username)
		writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
	}
}
