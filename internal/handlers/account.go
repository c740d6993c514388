package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
)

// GetAccount returns the caller's profile statistics and a merged feed
// of their recent activity.
func GetAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(auth.UserIDKey).(string)

		stats, err := database.GetAccountStats(db, userID)
		if err != nil {
			slog.Error("failed to get account stats", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		activity, err := database.GetRecentActivity(db, userID)
		if err != nil {
			slog.Error("failed to get recent activity", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"stats":           stats,
			"recent_activity": activity,
		})
	}
}
