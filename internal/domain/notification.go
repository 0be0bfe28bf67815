package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification types emitted by the wall subsystem.
const (
	NotificationJoinApproved   = "join_approved"
	NotificationJoinRejected   = "join_rejected"
	NotificationReaction       = "reaction"
	NotificationComment        = "comment"
	NotificationContentReport  = "content_report"
	NotificationMemberRemoved  = "member_removed"
	NotificationAdminPromotion = "admin_promotion"
)

type Notification struct {
	ID          uuid.UUID       `json:"id"`
	RecipientID uuid.UUID       `json:"recipient_id"`
	SenderID    *uuid.UUID      `json:"sender_id,omitempty"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data,omitempty"`
	Priority    string          `json:"priority"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
