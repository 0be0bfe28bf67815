package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeWallSubscribe   = "wall.subscribe"
	EventTypeWallUnsubscribe = "wall.unsubscribe"
	EventTypeTypingStart     = "typing.start"
	EventTypeTypingStop      = "typing.stop"
	EventTypePing            = "ping"
)

// Event types - Server → Client. The wall event names are the contract
// clients key their state updates on.
const (
	EventTypeMessageReceived        = "message_received"
	EventTypeMessageUpdated         = "message_updated"
	EventTypeMessageDeleted         = "message_deleted"
	EventTypeMessageReactionUpdated = "message_reaction_updated"
	EventTypeMessagePinUpdated      = "message_pin_updated"
	EventTypeMessageVideoProcessed  = "message_video_processed"
	EventTypeNewComment             = "new_comment"
	EventTypeNestedReplyAdded       = "nested_reply_added"
	EventTypeCommentUpdated         = "comment_updated"
	EventTypeCommentDeleted         = "comment_deleted"
	EventTypeCommentReactionUpdated = "comment_reaction_updated"
	EventTypeNotification           = "notification"
	EventTypeTyping                 = "typing"
	EventTypePresence               = "presence"
	EventTypePong                   = "pong"
	EventTypeError                  = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	WallID    *uuid.UUID      `json:"wall_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type WallPayload struct {
	WallID uuid.UUID `json:"wall_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type CommentDeletedPayload struct {
	ID            uuid.UUID `json:"id"`
	RootMessageID uuid.UUID `json:"root_message_id"`
}

// ReactionUpdatedPayload carries the full reaction list plus the acting
// user's resulting reaction (nil after a removal) so clients never need a
// re-fetch.
type ReactionUpdatedPayload struct {
	MessageID    uuid.UUID         `json:"message_id"`
	Reactions    []domain.Reaction `json:"reactions"`
	UserID       uuid.UUID         `json:"user_id"`
	UserReaction *string           `json:"user_reaction"`
}

type VideoProcessedPayload struct {
	MessageID   uuid.UUID           `json:"message_id"`
	Attachments []domain.Attachment `json:"attachments"`
}

type TypingPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, wallID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		WallID:    wallID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
