package live

import (
	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

// Typed publishers for everything the HTTP handlers announce to rooms.

func (h *Hub) AnnouncementPosted(a *models.AnnouncementWithAuthor) {
	h.Publish(a.RoomID, EventAnnouncementNew, a)
}

func (h *Hub) AnnouncementDeleted(roomID, announcementID string) {
	h.Publish(roomID, EventAnnouncementDeleted, AnnouncementDeletedPayload{
		RoomID:         roomID,
		AnnouncementID: announcementID,
	})
}

// ReactionChanged carries the full per-type breakdown so clients replace
// their counts instead of patching them.
func (h *Hub) ReactionChanged(roomID, announcementID string, counts map[string]int) {
	h.Publish(roomID, EventReactionUpdate, ReactionUpdatePayload{
		RoomID:         roomID,
		AnnouncementID: announcementID,
		Reactions:      models.ReactionBreakdown(counts),
	})
}

func (h *Hub) MemberJoined(roomID, userID, username string) {
	h.Publish(roomID, EventMemberJoined, MemberEventPayload{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		Role:     models.RoleMember,
	})
}

func (h *Hub) MemberLeft(roomID, userID, username string) {
	h.Publish(roomID, EventMemberLeft, MemberEventPayload{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
	})
}

func (h *Hub) MemberRemoved(roomID, userID, username string) {
	h.Publish(roomID, EventMemberRemoved, MemberEventPayload{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
	})
}

func (h *Hub) MemberPromoted(roomID, userID, username string) {
	h.Publish(roomID, EventMemberPromoted, MemberEventPayload{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		Role:     models.RoleAdmin,
	})
}

func (h *Hub) MemberDemoted(roomID, userID, username string) {
	h.Publish(roomID, EventMemberDemoted, MemberEventPayload{
		RoomID:   roomID,
		UserID:   userID,
		Username: username,
		Role:     models.RoleMember,
	})
}

func (h *Hub) RoomRenamed(room *models.Room) {
	h.Publish(room.ID, EventRoomUpdated, RoomEventPayload{RoomID: room.ID, Name: room.Name})
}

func (h *Hub) RoomDeleted(roomID, name string) {
	h.Publish(roomID, EventRoomDeleted, RoomEventPayload{RoomID: roomID, Name: name})
}
