package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// activityLimit caps the merged recent activity feed.
const activityLimit = 8

func GetAccountStats(db *sql.DB, userID string) (*models.AccountStats, error) {
	var s models.AccountStats
	err := db.QueryRow(`
		SELECT
		    (SELECT COUNT(*) FROM rooms WHERE created_by = $1),
		    (SELECT COUNT(*) FROM room_members rm WHERE rm.user_id = $1 AND rm.role <> 'owner'),
		    (SELECT COUNT(*) FROM announcements WHERE author_id = $1),
		    (SELECT COUNT(*) FROM announcement_reactions WHERE user_id = $1)
	`, userID).Scan(&s.OwnedRooms, &s.JoinedRooms, &s.Announcements, &s.Reactions)
	if err != nil {
		return nil, fmt.Errorf("failed to get account stats: %w", err)
	}
	return &s, nil
}

// GetRecentActivity merges the user's latest announcements, reactions,
// joins and created rooms into one feed, newest first.
func GetRecentActivity(db *sql.DB, userID string) ([]models.ActivityItem, error) {
	items := []models.ActivityItem{}

	rows, err := db.Query(`
		SELECT a.title, r.name, a.created_at
		FROM announcements a JOIN rooms r ON r.id = a.room_id
		WHERE a.author_id = $1 ORDER BY a.created_at DESC LIMIT 3
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent announcements: %w", err)
	}
	for rows.Next() {
		var item models.ActivityItem
		var title, roomName string
		if err := rows.Scan(&title, &roomName, &item.Time); err != nil {
			rows.Close()
			return nil, err
		}
		item.Icon = "📢"
		item.Title = "Posted announcement"
		item.Description = fmt.Sprintf("%q in %s", title, roomName)
		items = append(items, item)
	}
	rows.Close()

	rows, err = db.Query(`
		SELECT ar.reaction, a.title, ar.created_at
		FROM announcement_reactions ar JOIN announcements a ON a.id = ar.announcement_id
		WHERE ar.user_id = $1 ORDER BY ar.created_at DESC LIMIT 3
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent reactions: %w", err)
	}
	for rows.Next() {
		var item models.ActivityItem
		var reaction, title string
		if err := rows.Scan(&reaction, &title, &item.Time); err != nil {
			rows.Close()
			return nil, err
		}
		item.Icon = models.ReactionEmojis[reaction]
		item.Title = "Reacted to announcement"
		item.Description = fmt.Sprintf("%q", title)
		items = append(items, item)
	}
	rows.Close()

	rows, err = db.Query(`
		SELECT r.name, rm.joined_at
		FROM room_members rm JOIN rooms r ON r.id = rm.room_id
		WHERE rm.user_id = $1 AND rm.role <> 'owner'
		ORDER BY rm.joined_at DESC LIMIT 3
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent joins: %w", err)
	}
	for rows.Next() {
		var item models.ActivityItem
		var roomName string
		if err := rows.Scan(&roomName, &item.Time); err != nil {
			rows.Close()
			return nil, err
		}
		item.Icon = "🚪"
		item.Title = "Joined room"
		item.Description = roomName
		items = append(items, item)
	}
	rows.Close()

	rows, err = db.Query(`
		SELECT name, created_at FROM rooms
		WHERE created_by = $1 ORDER BY created_at DESC LIMIT 2
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent rooms: %w", err)
	}
	for rows.Next() {
		var item models.ActivityItem
		var roomName string
		if err := rows.Scan(&roomName, &item.Time); err != nil {
			rows.Close()
			return nil, err
		}
		item.Icon = "🏫"
		item.Title = "Created room"
		item.Description = roomName
		items = append(items, item)
	}
	rows.Close()

	sort.Slice(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	if len(items) > activityLimit {
		items = items[:activityLimit]
	}
	return items, nil
}
