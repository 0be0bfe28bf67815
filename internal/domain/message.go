package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment kinds.
const (
	AttachmentImage = "image"
	AttachmentVideo = "video"
)

// Video processing states: pending → {ready, failed}.
// Image attachments carry an empty state.
const (
	ProcessingPending = "pending"
	ProcessingReady   = "ready"
	ProcessingFailed  = "failed"
)

// Attachment is stored as part of the message's attachments jsonb column.
// For videos the pipeline rewrites URL to the HLS playlist on success and
// keeps OriginalURL as the playable fallback.
type Attachment struct {
	Kind        string  `json:"kind"`
	URL         string  `json:"url"`
	OriginalURL *string `json:"original_url,omitempty"`
	IsHLS       bool    `json:"is_hls,omitempty"`
	Processing  string  `json:"processing,omitempty"`
	JobKey      string  `json:"job_key,omitempty"`
	JobID       int64   `json:"job_id,omitempty"`
}

// Message is the shape shared by root posts and comments. Comments carry a
// non-nil ParentMessageID (always the root post, regardless of nesting depth)
// and, when replying to another comment, a ParentCommentID as well.
type Message struct {
	ID              uuid.UUID    `json:"id"`
	WallID          uuid.UUID    `json:"wall_id"`
	AuthorID        uuid.UUID    `json:"author_id"`
	Content         *string      `json:"content,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Visibility      string       `json:"visibility"`
	ParentMessageID *uuid.UUID   `json:"parent_message_id,omitempty"`
	ParentCommentID *uuid.UUID   `json:"parent_comment_id,omitempty"`
	IsPinned        bool         `json:"is_pinned"`
	PinnedBy        *uuid.UUID   `json:"pinned_by,omitempty"`
	EditedAt        *time.Time   `json:"edited_at,omitempty"`
	DeletedAt       *time.Time   `json:"-"`
	DeletedBy       *uuid.UUID   `json:"-"`
	ReportCount     int          `json:"report_count"`
	CreatedAt       time.Time    `json:"created_at"`
	// Joined fields
	AuthorUsername    string     `json:"author_username,omitempty"`
	AuthorDisplayName string     `json:"author_display_name,omitempty"`
	Reactions         []Reaction `json:"reactions"`
}

func (m *Message) IsComment() bool {
	return m.ParentMessageID != nil
}

func (m *Message) IsEdited() bool {
	return m.EditedAt != nil
}

// Reaction is a single emoji attached to a message or comment.
// The (message_id, user_id) pair is unique: toggling the same emoji removes
// the row, a different emoji replaces it.
type Reaction struct {
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	Username string `json:"username,omitempty"`
}
