package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrParentMismatch   = errors.New("parent comment does not belong to this message")
	ErrNotARootMessage  = errors.New("comments must target a root post")
	ErrNotACommentReply = errors.New("parent comment id does not reference a comment")
)

type CommentService struct {
	messageRepo   repository.MessageRepository
	wallRepo      repository.WallRepository
	reactionRepo  repository.ReactionRepository
	notifications *NotificationService
	notifier      Notifier
}

func NewCommentService(
	messageRepo repository.MessageRepository,
	wallRepo repository.WallRepository,
	reactionRepo repository.ReactionRepository,
	notifications *NotificationService,
) *CommentService {
	return &CommentService{
		messageRepo:   messageRepo,
		wallRepo:      wallRepo,
		reactionRepo:  reactionRepo,
		notifications: notifications,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *CommentService) SetNotifier(n Notifier) {
	s.notifier = n
}

type AddCommentInput struct {
	Content         string            `json:"content"`
	ParentCommentID *uuid.UUID        `json:"parent_comment_id,omitempty"`
	Attachments     []AttachmentInput `json:"attachments"`
}

// Add creates a comment under a root post, optionally as a reply to another
// comment. Comments always record the root post as parent_message_id no
// matter how deep the reply chain goes, which keeps flattened listing a
// single query.
func (s *CommentService) Add(ctx context.Context, userID, rootMessageID uuid.UUID, input AddCommentInput) (*domain.Message, error) {
	root, err := s.messageRepo.GetByID(ctx, rootMessageID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.DeletedAt != nil {
		return nil, ErrMessageNotFound
	}
	if root.IsComment() {
		return nil, ErrNotARootMessage
	}

	wall, err := s.wallRepo.GetByID(ctx, root.WallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}
	if err := checkCanComment(ctx, s.wallRepo, wall, userID); err != nil {
		return nil, err
	}

	var parent *domain.Message
	if input.ParentCommentID != nil {
		parent, err = s.messageRepo.GetByID(ctx, *input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.DeletedAt != nil {
			return nil, ErrCommentNotFound
		}
		if !parent.IsComment() {
			return nil, ErrNotACommentReply
		}
		if *parent.ParentMessageID != rootMessageID {
			return nil, ErrParentMismatch
		}
	}

	content := strings.TrimSpace(input.Content)
	if content == "" && len(input.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	comment := &domain.Message{
		ID:              uuid.New(),
		WallID:          root.WallID,
		AuthorID:        userID,
		Visibility:      root.Visibility,
		ParentMessageID: &rootMessageID,
		ParentCommentID: input.ParentCommentID,
		CreatedAt:       time.Now(),
	}
	if content != "" {
		comment.Content = &content
	}
	comment.Attachments = buildAttachments(comment.ID, input.Attachments)

	if err := s.messageRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	full.Reactions = []domain.Reaction{}

	if s.notifier != nil {
		s.notifier.CommentAdded(full)
		if parent != nil {
			s.notifier.NestedReplyAdded(full)
		}
	}

	// Obavijesti autora roota (odnosno parent komentara), ali ne samog sebe
	notifyTarget := root.AuthorID
	if parent != nil {
		notifyTarget = parent.AuthorID
	}
	if notifyTarget != userID {
		s.notifications.Notify(ctx, notifyTarget, &userID, domain.NotificationComment,
			"New reply",
			fmt.Sprintf("%s replied to your post", full.AuthorUsername),
			map[string]any{"wall_id": root.WallID, "message_id": rootMessageID, "comment_id": full.ID},
			domain.PriorityNormal)
	}

	return full, nil
}

// List returns every comment under a root post as one flattened,
// chronologically ordered list, regardless of nesting depth.
func (s *CommentService) List(ctx context.Context, callerID, rootMessageID uuid.UUID) ([]domain.Message, error) {
	root, err := s.messageRepo.GetByID(ctx, rootMessageID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.DeletedAt != nil {
		return nil, ErrMessageNotFound
	}

	wall, err := s.wallRepo.GetByID(ctx, root.WallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}
	if err := checkReadAccess(ctx, s.wallRepo, wall, callerID); err != nil {
		return nil, err
	}

	comments, err := s.messageRepo.ListComments(ctx, rootMessageID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Message{}
	}

	for i := range comments {
		reactions, err := s.reactionRepo.ListByMessage(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		if reactions == nil {
			reactions = []domain.Reaction{}
		}
		comments[i].Reactions = reactions
	}

	return comments, nil
}
