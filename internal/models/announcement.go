package models

import "time"

type Announcement struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AnnouncementWithAuthor struct {
	Announcement
	AuthorUsername string `json:"author_username"`
}

type AnnouncementWithReactions struct {
	AnnouncementWithAuthor
	Reactions []ReactionSummary `json:"reactions"`
}
