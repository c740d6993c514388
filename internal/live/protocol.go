package live

import (
	"encoding/json"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// Client to server.
const (
	TypePing = "ping"
)

// Server to client.
const (
	EventAnnouncementNew     = "announcement.new"
	EventAnnouncementDeleted = "announcement.deleted"
	EventReactionUpdate      = "reaction.update"
	EventMemberJoined        = "member.joined"
	EventMemberLeft          = "member.left"
	EventMemberRemoved       = "member.removed"
	EventMemberPromoted      = "member.promoted"
	EventMemberDemoted       = "member.demoted"
	EventRoomUpdated         = "room.updated"
	EventRoomDeleted         = "room.deleted"
	EventPresenceUpdate      = "presence.update"
	EventError               = "error"
	EventPong                = "pong"
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type AnnouncementDeletedPayload struct {
	RoomID         string `json:"room_id"`
	AnnouncementID string `json:"announcement_id"`
}

type ReactionUpdatePayload struct {
	RoomID         string                 `json:"room_id"`
	AnnouncementID string                 `json:"announcement_id"`
	Reactions      []models.ReactionCount `json:"reactions"`
}

type MemberEventPayload struct {
	RoomID   string `json:"room_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

type RoomEventPayload struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name,omitempty"`
}

type PresenceUpdatePayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewEvent(eventType string, payload interface{}) ([]byte, error) {
	var p json.RawMessage
	if payload != nil {
		var err error
		p, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Event{Type: eventType, Payload: p})
}
