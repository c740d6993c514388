package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// maxCodeAttempts bounds how many random codes are tried before giving up.
const maxCodeAttempts = 10

func randomRoomCode() (string, error) {
	buf := make([]byte, models.RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	code := make([]byte, models.RoomCodeLength)
	for i, b := range buf {
		code[i] = models.RoomCodeCharset[int(b)%len(models.RoomCodeCharset)]
	}
	return string(code), nil
}

// GenerateRoomCode returns a join code not currently assigned to any room.
func GenerateRoomCode(db *sql.DB) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := randomRoomCode()
		if err != nil {
			return "", err
		}
		exists, err := RoomCodeExists(db, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxCodeAttempts)
}

func RoomCodeExists(db *sql.DB, code string) (bool, error) {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// CreateRoom inserts the room and its owner membership in one transaction,
// so a room is never visible without an owner. An empty code means the
// server picks one; a caller-supplied code must already be normalized.
func CreateRoom(db *sql.DB, name, code, createdBy string) (*models.Room, error) {
	if code == "" {
		generated, err := GenerateRoomCode(db)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var r models.Room
	err = tx.QueryRow(
		`INSERT INTO rooms (name, code, created_by) VALUES ($1, $2, $3)
		 RETURNING id, name, code, created_by, created_at, updated_at`,
		name, code, createdBy,
	).Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO room_members (room_id, user_id, role) VALUES ($1, $2, 'owner')`,
		r.ID, createdBy,
	); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &r, nil
}

func GetRoomByID(db *sql.DB, id string) (*models.Room, error) {
	var r models.Room
	err := db.QueryRow(
		`SELECT id, name, code, created_by, created_at, updated_at FROM rooms WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &r, nil
}

func GetRoomByCode(db *sql.DB, code string) (*models.Room, error) {
	var r models.Room
	err := db.QueryRow(
		`SELECT id, name, code, created_by, created_at, updated_at FROM rooms WHERE code = $1`,
		code,
	).Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &r, nil
}

// UpdateRoomName renames a room. The join code never changes.
func UpdateRoomName(db *sql.DB, id, name string) (*models.Room, error) {
	var r models.Room
	err := db.QueryRow(
		`UPDATE rooms SET name = $2, updated_at = NOW() WHERE id = $1
		 RETURNING id, name, code, created_by, created_at, updated_at`,
		id, name,
	).Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return &r, nil
}

func DeleteRoom(db *sql.DB, id string) error {
	_, err := db.Exec(`DELETE FROM rooms WHERE id = $1`, id)
	return err
}

func GetOwnedRooms(db *sql.DB, userID string) ([]models.RoomSummary, error) {
	rows, err := db.Query(`
		SELECT r.id, r.name, r.code, r.created_by, r.created_at, r.updated_at,
		       (SELECT COUNT(*) FROM room_members rm WHERE rm.room_id = r.id),
		       (SELECT COUNT(*) FROM announcements a WHERE a.room_id = r.id)
		FROM rooms r
		WHERE r.created_by = $1
		ORDER BY r.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.RoomSummary
	for rows.Next() {
		var r models.RoomSummary
		if err := rows.Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
			&r.MemberCount, &r.AnnouncementCount); err != nil {
			return nil, err
		}
		r.Role = models.RoleOwner
		rooms = append(rooms, r)
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	return rooms, nil
}

func GetJoinedRooms(db *sql.DB, userID string) ([]models.RoomSummary, error) {
	rows, err := db.Query(`
		SELECT r.id, r.name, r.code, r.created_by, r.created_at, r.updated_at, rm.role,
		       (SELECT COUNT(*) FROM room_members m WHERE m.room_id = r.id),
		       (SELECT COUNT(*) FROM announcements a WHERE a.room_id = r.id)
		FROM rooms r
		JOIN room_members rm ON rm.room_id = r.id
		WHERE rm.user_id = $1 AND rm.role <> 'owner'
		ORDER BY rm.joined_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get joined rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.RoomSummary
	for rows.Next() {
		var r models.RoomSummary
		if err := rows.Scan(&r.ID, &r.Name, &r.Code, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
			&r.Role, &r.MemberCount, &r.AnnouncementCount); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}
	return rooms, nil
}

// --- Memberships ---

func GetMembership(db *sql.DB, roomID, userID string) (*models.Membership, error) {
	var m models.Membership
	err := db.QueryRow(`
		SELECT room_id, user_id, role, joined_at, promoted_at, COALESCE(promoted_by::text, '')
		FROM room_members WHERE room_id = $1 AND user_id = $2
	`, roomID, userID).Scan(&m.RoomID, &m.UserID, &m.Role, &m.JoinedAt, &m.PromotedAt, &m.PromotedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

func AddMember(db *sql.DB, roomID, userID string) error {
	_, err := db.Exec(
		`INSERT INTO room_members (room_id, user_id, role) VALUES ($1, $2, 'member')`,
		roomID, userID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func RemoveMember(db *sql.DB, roomID, userID string) error {
	_, err := db.Exec(`DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`, roomID, userID)
	return err
}

// GetRoomMembers returns every member with the owner first, then admins,
// then regular members, each group in join order.
func GetRoomMembers(db *sql.DB, roomID string) ([]models.Member, error) {
	rows, err := db.Query(`
		SELECT u.id, u.username, rm.role, rm.joined_at, rm.promoted_at, COALESCE(p.username, '')
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		LEFT JOIN users p ON p.id = rm.promoted_by
		WHERE rm.room_id = $1
		ORDER BY CASE rm.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, rm.joined_at
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.UserID, &m.Username, &m.Role, &m.JoinedAt, &m.PromotedAt, &m.PromotedBy); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

func PromoteMember(db *sql.DB, roomID, userID, promotedBy string) error {
	_, err := db.Exec(`
		UPDATE room_members SET role = 'admin', promoted_at = NOW(), promoted_by = $3
		WHERE room_id = $1 AND user_id = $2 AND role = 'member'
	`, roomID, userID, promotedBy)
	return err
}

func DemoteMember(db *sql.DB, roomID, userID string) error {
	_, err := db.Exec(`
		UPDATE room_members SET role = 'member', promoted_at = NULL, promoted_by = NULL
		WHERE room_id = $1 AND user_id = $2 AND role = 'admin'
	`, roomID, userID)
	return err
}

func GetRoomIDsForUser(db *sql.DB, userID string) ([]string, error) {
	rows, err := db.Query(`SELECT room_id FROM room_members WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
