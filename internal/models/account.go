package models

import "time"

type AccountStats struct {
	OwnedRooms    int `json:"owned_rooms"`
	JoinedRooms   int `json:"joined_rooms"`
	Announcements int `json:"announcements"`
	Reactions     int `json:"reactions"`
}

type ActivityItem struct {
	Icon        string    `json:"icon"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}
