package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
	"github.com/Kent0710/classroom-announcement-app/internal/live"
	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// ListAnnouncements pages a room's announcements newest first, with the
// reaction breakdown as seen by the caller.
func ListAnnouncements(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}

		before := time.Now()
		if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
			if t, err := time.Parse(time.RFC3339, beforeStr); err == nil {
				before = t
			}
		}

		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		announcements, err := database.GetAnnouncements(db, roomID, userID, before, limit)
		if err != nil {
			slog.Error("failed to get announcements", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, announcements)
	}
}

func CreateAnnouncement(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		membership, err := database.GetMembership(db, roomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !membership.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admins can post announcements")
			return
		}

		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if len(title) > 200 {
			writeError(w, http.StatusBadRequest, "title must be 200 characters or fewer")
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		announcement, err := database.CreateAnnouncement(db, roomID, userID, title, req.Content)
		if err != nil {
			slog.Error("failed to create announcement", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("announcement created", "announcement_id", announcement.ID, "room_id", roomID)
		hub.AnnouncementPosted(announcement)
		writeJSON(w, http.StatusCreated, announcement)
	}
}

func DeleteAnnouncement(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		announcementID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		announcement, err := database.GetAnnouncementByID(db, announcementID)
		if err != nil {
			slog.Error("failed to get announcement", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if announcement == nil {
			writeError(w, http.StatusNotFound, "announcement not found")
			return
		}

		membership, err := database.GetMembership(db, announcement.RoomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !membership.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admins can delete announcements")
			return
		}

		if err := database.DeleteAnnouncement(db, announcementID); err != nil {
			slog.Error("failed to delete announcement", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("announcement deleted", "announcement_id", announcementID, "user_id", userID)
		hub.AnnouncementDeleted(announcement.RoomID, announcementID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ToggleReaction flips the caller's reaction on an announcement: same
// type removes it, a different type replaces it, none adds it.
func ToggleReaction(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		announcementID := mux.Vars(r)["id"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		var req struct {
			Reaction string `json:"reaction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if !models.ValidReaction(req.Reaction) {
			writeError(w, http.StatusBadRequest, "invalid reaction type")
			return
		}

		announcement, err := database.GetAnnouncementByID(db, announcementID)
		if err != nil {
			slog.Error("failed to get announcement", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if announcement == nil {
			writeError(w, http.StatusNotFound, "announcement not found")
			return
		}

		membership, err := database.GetMembership(db, announcement.RoomID, userID)
		if err != nil || membership == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}

		userReaction, err := database.ToggleReaction(db, announcementID, userID, req.Reaction)
		if err != nil {
			slog.Error("failed to toggle reaction", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		counts, err := database.GetReactionCounts(db, announcementID)
		if err != nil {
			slog.Error("failed to get reaction counts", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		hub.ReactionChanged(announcement.RoomID, announcementID, counts)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"reactions":     models.SummarizeReactions(counts, userReaction),
			"user_reaction": userReaction,
		})
	}
}
