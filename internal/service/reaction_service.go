package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forPelevin/gomoji"
	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var ErrInvalidEmoji = errors.New("reaction must be a single emoji")

// Reaction toggle outcomes.
const (
	ReactionAdded   = "added"
	ReactionRemoved = "removed"
)

// ReactionService is the one shared toggle contract for both messages and
// comments: a user holds at most one reaction per entity; toggling the same
// emoji removes it, a different emoji replaces it.
type ReactionService struct {
	reactionRepo  repository.ReactionRepository
	messageRepo   repository.MessageRepository
	wallRepo      repository.WallRepository
	notifications *NotificationService
	notifier      Notifier
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	messageRepo repository.MessageRepository,
	wallRepo repository.WallRepository,
	notifications *NotificationService,
) *ReactionService {
	return &ReactionService{
		reactionRepo:  reactionRepo,
		messageRepo:   messageRepo,
		wallRepo:      wallRepo,
		notifications: notifications,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ReactionService) SetNotifier(n Notifier) {
	s.notifier = n
}

type ToggleResult struct {
	Action       string            `json:"action"`
	UserReaction *string           `json:"user_reaction"`
	Reactions    []domain.Reaction `json:"reactions"`
}

func (s *ReactionService) Toggle(ctx context.Context, userID, messageID uuid.UUID, emoji string) (*ToggleResult, error) {
	if err := validateEmoji(emoji); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, ErrMessageNotFound
	}

	wall, err := s.wallRepo.GetByID(ctx, msg.WallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}
	if err := checkCanComment(ctx, s.wallRepo, wall, userID); err != nil {
		return nil, err
	}

	existing, err := s.reactionRepo.Get(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{}
	if existing != nil && existing.Emoji == emoji {
		// Isti emoji drugi put → makni reakciju
		if err := s.reactionRepo.Delete(ctx, messageID, userID); err != nil {
			return nil, fmt.Errorf("removing reaction: %w", err)
		}
		result.Action = ReactionRemoved
	} else {
		reaction := &domain.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
			CreatedAt: time.Now(),
		}
		if err := s.reactionRepo.Upsert(ctx, reaction); err != nil {
			return nil, fmt.Errorf("setting reaction: %w", err)
		}
		result.Action = ReactionAdded
		result.UserReaction = &emoji
	}

	reactions, err := s.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if reactions == nil {
		reactions = []domain.Reaction{}
	}
	result.Reactions = reactions

	if s.notifier != nil {
		if msg.IsComment() {
			s.notifier.CommentReactionUpdated(msg.WallID, messageID, reactions, userID, result.UserReaction)
		} else {
			s.notifier.MessageReactionUpdated(msg.WallID, messageID, reactions, userID, result.UserReaction)
		}
	}

	// Autora obavijesti samo kod prve reakcije: zamjena emojija i vlastite
	// reakcije ne salju nista
	if result.Action == ReactionAdded && existing == nil && msg.AuthorID != userID {
		s.notifications.Notify(ctx, msg.AuthorID, &userID, domain.NotificationReaction,
			"New reaction",
			fmt.Sprintf("Someone reacted %s to your post", emoji),
			map[string]any{"wall_id": msg.WallID, "message_id": messageID, "emoji": emoji},
			domain.PriorityLow)
	}

	return result, nil
}

// validateEmoji requires the reaction to be exactly one emoji and nothing
// else. CollectAll keeps duplicate occurrences, so a repeated emoji shows up
// as multiple entries; the final check catches non-emoji bytes around it.
func validateEmoji(reaction string) error {
	emojis := gomoji.CollectAll(reaction)
	if len(emojis) != 1 {
		return ErrInvalidEmoji
	}
	if emojis[0].Character != reaction {
		return ErrInvalidEmoji
	}
	return nil
}
