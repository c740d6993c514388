package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

func CreateAnnouncement(db *sql.DB, roomID, authorID, title, content string) (*models.AnnouncementWithAuthor, error) {
	var a models.AnnouncementWithAuthor
	err := db.QueryRow(`
		WITH inserted AS (
		    INSERT INTO announcements (room_id, author_id, title, content)
		    VALUES ($1, $2, $3, $4)
		    RETURNING id, room_id, author_id, title, content, created_at, updated_at
		)
		SELECT i.id, i.room_id, i.author_id, i.title, i.content, i.created_at, i.updated_at, u.username
		FROM inserted i JOIN users u ON i.author_id = u.id
	`, roomID, authorID, title, content,
	).Scan(&a.ID, &a.RoomID, &a.AuthorID, &a.Title, &a.Content, &a.CreatedAt, &a.UpdatedAt, &a.AuthorUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	return &a, nil
}

func GetAnnouncementByID(db *sql.DB, id string) (*models.AnnouncementWithAuthor, error) {
	var a models.AnnouncementWithAuthor
	err := db.QueryRow(`
		SELECT a.id, a.room_id, a.author_id, a.title, a.content, a.created_at, a.updated_at, u.username
		FROM announcements a JOIN users u ON a.author_id = u.id
		WHERE a.id = $1
	`, id).Scan(&a.ID, &a.RoomID, &a.AuthorID, &a.Title, &a.Content, &a.CreatedAt, &a.UpdatedAt, &a.AuthorUsername)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

// GetAnnouncements pages a room's feed newest first, with each item's
// reaction breakdown from the viewer's perspective.
func GetAnnouncements(db *sql.DB, roomID, viewerID string, before time.Time, limit int) ([]models.AnnouncementWithReactions, error) {
	rows, err := db.Query(`
		SELECT a.id, a.room_id, a.author_id, a.title, a.content, a.created_at, a.updated_at, u.username
		FROM announcements a JOIN users u ON a.author_id = u.id
		WHERE a.room_id = $1 AND a.created_at < $2
		ORDER BY a.created_at DESC LIMIT $3
	`, roomID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get announcements: %w", err)
	}
	defer rows.Close()

	var anns []models.AnnouncementWithAuthor
	var ids []string
	for rows.Next() {
		var a models.AnnouncementWithAuthor
		if err := rows.Scan(&a.ID, &a.RoomID, &a.AuthorID, &a.Title, &a.Content,
			&a.CreatedAt, &a.UpdatedAt, &a.AuthorUsername); err != nil {
			return nil, err
		}
		anns = append(anns, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.AnnouncementWithReactions, 0, len(anns))
	if len(anns) == 0 {
		return out, nil
	}

	counts, err := getReactionCountsFor(db, ids)
	if err != nil {
		return nil, err
	}
	viewerReactions, err := getUserReactionsFor(db, ids, viewerID)
	if err != nil {
		return nil, err
	}

	for _, a := range anns {
		out = append(out, models.AnnouncementWithReactions{
			AnnouncementWithAuthor: a,
			Reactions:              models.SummarizeReactions(counts[a.ID], viewerReactions[a.ID]),
		})
	}
	return out, nil
}

func getReactionCountsFor(db *sql.DB, announcementIDs []string) (map[string]map[string]int, error) {
	rows, err := db.Query(`
		SELECT announcement_id, reaction, COUNT(*)
		FROM announcement_reactions
		WHERE announcement_id = ANY($1)
		GROUP BY announcement_id, reaction
	`, pq.Array(announcementIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var annID, reaction string
		var n int
		if err := rows.Scan(&annID, &reaction, &n); err != nil {
			return nil, err
		}
		if counts[annID] == nil {
			counts[annID] = make(map[string]int)
		}
		counts[annID][reaction] = n
	}
	return counts, rows.Err()
}

func getUserReactionsFor(db *sql.DB, announcementIDs []string, userID string) (map[string]string, error) {
	rows, err := db.Query(`
		SELECT announcement_id, reaction
		FROM announcement_reactions
		WHERE announcement_id = ANY($1) AND user_id = $2
	`, pq.Array(announcementIDs), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reactions: %w", err)
	}
	defer rows.Close()

	reactions := make(map[string]string)
	for rows.Next() {
		var annID, reaction string
		if err := rows.Scan(&annID, &reaction); err != nil {
			return nil, err
		}
		reactions[annID] = reaction
	}
	return reactions, rows.Err()
}

func DeleteAnnouncement(db *sql.DB, id string) error {
	_, err := db.Exec(`DELETE FROM announcements WHERE id = $1`, id)
	return err
}

// --- Reactions ---

// ToggleReaction applies one user's reaction to an announcement. Reacting
// with the current type removes it, a different type replaces it, and no
// existing reaction adds one. Returns the user's resulting reaction, empty
// when it was removed.
func ToggleReaction(db *sql.DB, announcementID, userID, reaction string) (string, error) {
	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(
		`SELECT reaction FROM announcement_reactions
		 WHERE announcement_id = $1 AND user_id = $2 FOR UPDATE`,
		announcementID, userID,
	).Scan(&current)

	var result string
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(
			`INSERT INTO announcement_reactions (announcement_id, user_id, reaction) VALUES ($1, $2, $3)`,
			announcementID, userID, reaction,
		); err != nil {
			return "", fmt.Errorf("failed to add reaction: %w", err)
		}
		result = reaction
	case err != nil:
		return "", fmt.Errorf("failed to get reaction: %w", err)
	case current == reaction:
		if _, err := tx.Exec(
			`DELETE FROM announcement_reactions WHERE announcement_id = $1 AND user_id = $2`,
			announcementID, userID,
		); err != nil {
			return "", fmt.Errorf("failed to remove reaction: %w", err)
		}
		result = ""
	default:
		if _, err := tx.Exec(
			`UPDATE announcement_reactions SET reaction = $3, created_at = NOW()
			 WHERE announcement_id = $1 AND user_id = $2`,
			announcementID, userID, reaction,
		); err != nil {
			return "", fmt.Errorf("failed to change reaction: %w", err)
		}
		result = reaction
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func GetReactionCounts(db *sql.DB, announcementID string) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT reaction, COUNT(*) FROM announcement_reactions
		 WHERE announcement_id = $1 GROUP BY reaction`,
		announcementID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reaction string
		var n int
		if err := rows.Scan(&reaction, &n); err != nil {
			return nil, err
		}
		counts[reaction] = n
	}
	return counts, rows.Err()
}
