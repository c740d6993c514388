package models

import "time"

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Membership struct {
	RoomID     string     `json:"room_id"`
	UserID     string     `json:"user_id"`
	Role       string     `json:"role"`
	JoinedAt   time.Time  `json:"joined_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
	PromotedBy string     `json:"promoted_by,omitempty"`
}

type Member struct {
	UserID     string     `json:"user_id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	Online     bool       `json:"online"`
	JoinedAt   time.Time  `json:"joined_at"`
	PromotedAt *time.Time `json:"promoted_at,omitempty"`
	PromotedBy string     `json:"promoted_by,omitempty"`
}

func (m *Membership) IsOwner() bool {
	return m.Role == RoleOwner
}

// IsAdmin reports whether the member holds admin rights. The owner
// always does.
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

// CanKick reports whether m may remove target from the room. The owner
// cannot be removed, nobody can remove themselves, and admins may only
// remove regular members.
func (m *Membership) CanKick(target *Membership) bool {
	if target.IsOwner() || target.UserID == m.UserID {
		return false
	}
	if m.IsOwner() {
		return true
	}
	return m.Role == RoleAdmin && target.Role == RoleMember
}
