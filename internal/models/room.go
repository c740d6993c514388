package models

import (
	"strings"
	"time"
)

// RoomCodeLength is the fixed length of a room join code.
const RoomCodeLength = 6

// RoomCodeCharset holds every character a join code may contain.
const RoomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomSummary struct {
	Room
	Role              string `json:"role"`
	MemberCount       int    `json:"member_count"`
	AnnouncementCount int    `json:"announcement_count"`
}

// NormalizeRoomCode uppercases a user-supplied join code and reports
// whether it has the required shape (6 characters, A-Z and 0-9 only).
func NormalizeRoomCode(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != RoomCodeLength {
		return code, false
	}
	for _, c := range code {
		if !strings.ContainsRune(RoomCodeCharset, c) {
			return code, false
		}
	}
	return code, true
}
