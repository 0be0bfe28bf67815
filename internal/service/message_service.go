package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageAuthor   = errors.New("only the author can perform this action")
	ErrEmptyMessage       = errors.New("message needs content or at least one attachment")
	ErrCannotReportOwn    = errors.New("cannot report your own content")
	ErrCannotPinComment   = errors.New("only root posts can be pinned")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrVideoNotCancelable = errors.New("video is not awaiting processing")
)

// Notifier broadcasts real-time events to connected wall subscribers.
type Notifier interface {
	MessageReceived(msg *domain.Message)
	MessageUpdated(msg *domain.Message)
	MessageDeleted(wallID, messageID uuid.UUID)
	MessagePinUpdated(msg *domain.Message)
	MessageReactionUpdated(wallID, messageID uuid.UUID, reactions []domain.Reaction, userID uuid.UUID, userReaction *string)
	MessageVideoProcessed(wallID, messageID uuid.UUID, attachments []domain.Attachment)
	CommentAdded(comment *domain.Message)
	NestedReplyAdded(comment *domain.Message)
	CommentUpdated(comment *domain.Message)
	CommentDeleted(wallID, rootMessageID, commentID uuid.UUID)
	CommentReactionUpdated(wallID, messageID uuid.UUID, reactions []domain.Reaction, userID uuid.UUID, userReaction *string)
	NotifyUser(userID uuid.UUID, n *domain.Notification)
}

// VideoProcessor dispatches background transcode jobs for video attachments.
// Enqueue returns the job id used for later cancellation.
type VideoProcessor interface {
	Enqueue(ctx context.Context, messageID uuid.UUID, attachmentIndex int, sourceURL, jobKey string) (int64, error)
	Cancel(ctx context.Context, jobID int64) error
}

type MessageService struct {
	messageRepo   repository.MessageRepository
	wallRepo      repository.WallRepository
	reactionRepo  repository.ReactionRepository
	notifications *NotificationService
	notifier      Notifier
	videos        VideoProcessor
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	wallRepo repository.WallRepository,
	reactionRepo repository.ReactionRepository,
	notifications *NotificationService,
) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		wallRepo:      wallRepo,
		reactionRepo:  reactionRepo,
		notifications: notifications,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetVideoProcessor sets the background video pipeline (optional dependency).
func (s *MessageService) SetVideoProcessor(v VideoProcessor) {
	s.videos = v
}

type AttachmentInput struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type CreateMessageInput struct {
	Content     string            `json:"content"`
	Attachments []AttachmentInput `json:"attachments"`
	Tags        []string          `json:"tags"`
	Visibility  string            `json:"visibility"`
}

type EditMessageInput struct {
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

type MessageListResponse struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

func (s *MessageService) Create(ctx context.Context, userID, wallID uuid.UUID, input CreateMessageInput) (*domain.Message, error) {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}
	if err := checkCanPost(ctx, s.wallRepo, wall, userID); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" && len(input.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		WallID:     wallID,
		AuthorID:   userID,
		Visibility: input.Visibility,
		Tags:       input.Tags,
		CreatedAt:  time.Now(),
	}
	if content != "" {
		msg.Content = &content
	}
	if msg.Visibility == "" {
		msg.Visibility = "members"
	}
	msg.Attachments = buildAttachments(msg.ID, input.Attachments)

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	full.Reactions = []domain.Reaction{}

	if s.notifier != nil {
		s.notifier.MessageReceived(full)
	}

	// Video konverzija ide u background; create call se odmah vraća
	s.dispatchVideoJobs(ctx, full)

	return full, nil
}

// dispatchVideoJobs enqueues a transcode job per pending video attachment and
// records the job ids. Enqueue failures mark the attachment failed; the
// original upload stays playable either way.
func (s *MessageService) dispatchVideoJobs(ctx context.Context, msg *domain.Message) {
	if s.videos == nil {
		return
	}

	dispatched := false
	for i := range msg.Attachments {
		att := &msg.Attachments[i]
		if att.Kind != domain.AttachmentVideo || att.Processing != domain.ProcessingPending {
			continue
		}
		jobID, err := s.videos.Enqueue(ctx, msg.ID, i, att.URL, att.JobKey)
		if err != nil {
			log.Printf("messages: enqueue transcode for %s[%d]: %v", msg.ID, i, err)
			att.Processing = domain.ProcessingFailed
		} else {
			att.JobID = jobID
		}
		dispatched = true
	}

	if dispatched {
		if err := s.messageRepo.UpdateAttachments(ctx, msg.ID, msg.Attachments); err != nil {
			log.Printf("messages: recording job ids for %s: %v", msg.ID, err)
		}
	}
}

func buildAttachments(messageID uuid.UUID, inputs []AttachmentInput) []domain.Attachment {
	if len(inputs) == 0 {
		return nil
	}
	attachments := make([]domain.Attachment, 0, len(inputs))
	for i, in := range inputs {
		att := domain.Attachment{Kind: in.Kind, URL: in.URL}
		if in.Kind == domain.AttachmentVideo {
			att.Processing = domain.ProcessingPending
			// Job key derived from (message, index, timestamp) so retried
			// creates address the same logical conversion.
			att.JobKey = fmt.Sprintf("%s:%d:%d", messageID, i, time.Now().UnixNano())
		}
		attachments = append(attachments, att)
	}
	return attachments
}

func (s *MessageService) List(ctx context.Context, callerID, wallID uuid.UUID, limit, page int) (*MessageListResponse, error) {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil || !wall.IsActive {
		return nil, ErrWallNotFound
	}
	if err := checkReadAccess(ctx, s.wallRepo, wall, callerID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	// Dohvati limit+1 da znamo ima li jos
	messages, err := s.messageRepo.ListByWall(ctx, wallID, limit+1, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	for i := range messages {
		if err := s.attachReactions(ctx, &messages[i]); err != nil {
			return nil, err
		}
	}

	return &MessageListResponse{Messages: messages, HasMore: hasMore}, nil
}

// Edit updates content and tags. Author only; works for both root posts and
// comments, emitting the matching event.
func (s *MessageService) Edit(ctx context.Context, userID, messageID uuid.UUID, input EditMessageInput) (*domain.Message, error) {
	msg, err := s.getLive(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != userID {
		return nil, ErrNotMessageAuthor
	}

	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" && len(msg.Attachments) == 0 {
			return nil, ErrEmptyMessage
		}
		if content == "" {
			msg.Content = nil
		} else {
			msg.Content = &content
		}
	}
	if input.Tags != nil {
		msg.Tags = input.Tags
	}

	if err := s.messageRepo.UpdateContent(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	updated, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, updated); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if updated.IsComment() {
			s.notifier.CommentUpdated(updated)
		} else {
			s.notifier.MessageUpdated(updated)
		}
	}

	return updated, nil
}

// Delete soft-deletes a message or comment. Author or wall admin.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.getLive(ctx, messageID)
	if err != nil {
		return err
	}

	if msg.AuthorID != userID {
		member, err := s.wallRepo.GetMember(ctx, msg.WallID, userID)
		if err != nil {
			return err
		}
		if !member.IsAdmin() {
			return ErrNotMessageAuthor
		}
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID, userID); err != nil {
		return err
	}

	if s.notifier != nil {
		if msg.IsComment() {
			s.notifier.CommentDeleted(msg.WallID, *msg.ParentMessageID, messageID)
		} else {
			s.notifier.MessageDeleted(msg.WallID, messageID)
		}
	}

	return nil
}

// SetPinned pins or unpins a root post. Wall admin only.
func (s *MessageService) SetPinned(ctx context.Context, userID, messageID uuid.UUID, pinned bool) (*domain.Message, error) {
	msg, err := s.getLive(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsComment() {
		return nil, ErrCannotPinComment
	}

	member, err := s.wallRepo.GetMember(ctx, msg.WallID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotWallAdmin
	}

	var pinnedBy *uuid.UUID
	if pinned {
		pinnedBy = &userID
	}
	if err := s.messageRepo.SetPinned(ctx, messageID, pinned, pinnedBy); err != nil {
		return nil, err
	}

	updated, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.attachReactions(ctx, updated); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.MessagePinUpdated(updated)
	}

	return updated, nil
}

// Report flags content for the wall's admins. Self-reports are rejected.
func (s *MessageService) Report(ctx context.Context, userID, messageID uuid.UUID) (int, error) {
	msg, err := s.getLive(ctx, messageID)
	if err != nil {
		return 0, err
	}
	if msg.AuthorID == userID {
		return 0, ErrCannotReportOwn
	}

	count, err := s.messageRepo.IncrementReportCount(ctx, messageID)
	if err != nil {
		return 0, err
	}

	members, err := s.wallRepo.ListMembers(ctx, msg.WallID)
	if err != nil {
		log.Printf("messages: listing admins for report on %s: %v", messageID, err)
		return count, nil
	}
	for _, m := range members {
		if !m.IsAdmin() {
			continue
		}
		s.notifications.Notify(ctx, m.UserID, &userID, domain.NotificationContentReport,
			"Content reported",
			fmt.Sprintf("A message by %s has been reported (%d reports)", msg.AuthorUsername, count),
			map[string]any{"wall_id": msg.WallID, "message_id": msg.ID}, domain.PriorityHigh)
	}

	return count, nil
}

// CancelVideo aborts a pending transcode job. The attachment is marked failed
// so it never dangles in a processing state; the original URL stays playable.
func (s *MessageService) CancelVideo(ctx context.Context, userID, messageID uuid.UUID, attachmentIndex int) (*domain.Message, error) {
	msg, err := s.getLive(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.AuthorID != userID {
		return nil, ErrNotMessageAuthor
	}
	if attachmentIndex < 0 || attachmentIndex >= len(msg.Attachments) {
		return nil, ErrAttachmentNotFound
	}

	att := &msg.Attachments[attachmentIndex]
	if att.Kind != domain.AttachmentVideo || att.Processing != domain.ProcessingPending {
		return nil, ErrVideoNotCancelable
	}

	if s.videos != nil && att.JobID != 0 {
		if err := s.videos.Cancel(ctx, att.JobID); err != nil {
			log.Printf("messages: canceling transcode job %d: %v", att.JobID, err)
		}
	}

	att.Processing = domain.ProcessingFailed
	if err := s.messageRepo.UpdateAttachments(ctx, messageID, msg.Attachments); err != nil {
		return nil, fmt.Errorf("updating attachments: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageVideoProcessed(msg.WallID, messageID, msg.Attachments)
	}

	return msg, nil
}

// getLive fetches a message, treating soft-deleted rows as missing.
func (s *MessageService) getLive(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

func (s *MessageService) attachReactions(ctx context.Context, msg *domain.Message) error {
	reactions, err := s.reactionRepo.ListByMessage(ctx, msg.ID)
	if err != nil {
		return err
	}
	if reactions == nil {
		reactions = []domain.Reaction{}
	}
	msg.Reactions = reactions
	return nil
}
