package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post/comment permission policies.
const (
	PermissionMembers = "members"
	PermissionAdmins  = "admins"
)

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type WallSettings struct {
	RequireApproval    bool   `json:"require_approval"`
	AllowInvites       bool   `json:"allow_invites"`
	MaxMembers         int    `json:"max_members"`
	PostPermissions    string `json:"post_permissions"`
	CommentPermissions string `json:"comment_permissions"`
}

// DefaultWallSettings is applied when a wall is created without explicit settings.
func DefaultWallSettings() WallSettings {
	return WallSettings{
		RequireApproval:    false,
		AllowInvites:       true,
		MaxMembers:         500,
		PostPermissions:    PermissionMembers,
		CommentPermissions: PermissionMembers,
	}
}

type Wall struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
	CreatorID   uuid.UUID    `json:"creator_id"`
	IsPublic    bool         `json:"is_public"`
	IsActive    bool         `json:"is_active"`
	Settings    WallSettings `json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	// Joined fields
	MemberCount int `json:"member_count,omitempty"`
}

type WallMember struct {
	WallID   uuid.UUID `json:"wall_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	// Joined fields
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

func (m *WallMember) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

// Join request states. Pending is the only non-terminal state.
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

type JoinRequest struct {
	ID            uuid.UUID  `json:"id"`
	WallID        uuid.UUID  `json:"wall_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Message       *string    `json:"message,omitempty"`
	Status        string     `json:"status"`
	ReviewerID    *uuid.UUID `json:"reviewer_id,omitempty"`
	ReviewMessage *string    `json:"review_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	// Joined fields
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
