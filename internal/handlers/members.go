package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
	"github.com/Kent0710/classroom-announcement-app/internal/live"
	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// KickMember removes another member from the room. The owner can remove
// anyone but themselves, admins can only remove regular members.
func KickMember(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		roomID, targetID := vars["id"], vars["userID"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		actor, err := database.GetMembership(db, roomID, userID)
		if err != nil || actor == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !actor.IsAdmin() {
			writeError(w, http.StatusForbidden, "you do not have permission to remove members")
			return
		}

		target, err := database.GetMembership(db, roomID, targetID)
		if err != nil {
			slog.Error("failed to get member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}

		if target.IsOwner() {
			writeError(w, http.StatusForbidden, "the room owner cannot be removed")
			return
		}
		if target.UserID == userID {
			writeError(w, http.StatusBadRequest, "you cannot remove yourself from the room")
			return
		}
		if !actor.CanKick(target) {
			writeError(w, http.StatusForbidden, "only the room owner can remove administrators")
			return
		}

		targetUser, err := database.GetUserByID(db, targetID)
		if err != nil || targetUser == nil {
			slog.Error("failed to get user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := database.RemoveMember(db, roomID, targetID); err != nil {
			slog.Error("failed to remove member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("member removed", "room_id", roomID, "user_id", targetID, "by", userID)
		hub.MemberRemoved(roomID, targetID, targetUser.Username)
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

// PromoteMember raises a regular member to admin. Owner only; the
// promotion stamps who promoted them and when.
func PromoteMember(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		roomID, targetID := vars["id"], vars["userID"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		actor, err := database.GetMembership(db, roomID, userID)
		if err != nil || actor == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !actor.IsOwner() {
			writeError(w, http.StatusForbidden, "only the room owner can promote members")
			return
		}

		target, err := database.GetMembership(db, roomID, targetID)
		if err != nil {
			slog.Error("failed to get member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		if target.Role != models.RoleMember {
			writeError(w, http.StatusConflict, "user is already an admin or owner")
			return
		}

		if err := database.PromoteMember(db, roomID, targetID, userID); err != nil {
			slog.Error("failed to promote member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		targetUser, err := database.GetUserByID(db, targetID)
		if err != nil || targetUser == nil {
			slog.Error("failed to get user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("member promoted", "room_id", roomID, "user_id", targetID, "by", userID)
		hub.MemberPromoted(roomID, targetID, targetUser.Username)
		writeJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
	}
}

// DemoteMember returns an admin to regular member and clears the
// promotion record. Owner only.
func DemoteMember(db *sql.DB, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		roomID, targetID := vars["id"], vars["userID"]
		userID := r.Context().Value(auth.UserIDKey).(string)

		actor, err := database.GetMembership(db, roomID, userID)
		if err != nil || actor == nil {
			writeError(w, http.StatusForbidden, "not a member of this room")
			return
		}
		if !actor.IsOwner() {
			writeError(w, http.StatusForbidden, "only the room owner can demote administrators")
			return
		}

		target, err := database.GetMembership(db, roomID, targetID)
		if err != nil {
			slog.Error("failed to get member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if target == nil {
			writeError(w, http.StatusNotFound, "member not found")
			return
		}
		if target.IsOwner() {
			writeError(w, http.StatusForbidden, "the room owner cannot be demoted")
			return
		}
		if target.Role != models.RoleAdmin {
			writeError(w, http.StatusConflict, "user is not an admin")
			return
		}

		if err := database.DemoteMember(db, roomID, targetID); err != nil {
			slog.Error("failed to demote member", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		targetUser, err := database.GetUserByID(db, targetID)
		if err != nil || targetUser == nil {
			slog.Error("failed to get user", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		slog.Info("member demoted", "room_id", roomID, "user_id", targetID, "by", userID)
		hub.MemberDemoted(roomID, targetID, targetUser.Username)
		writeJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
	}
}
