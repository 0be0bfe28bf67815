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
	ErrWallNotFound           = errors.New("wall not found")
	ErrWallNameTaken          = errors.New("a wall with this name already exists")
	ErrNotWallAdmin           = errors.New("only wall admins can perform this action")
	ErrNotWallCreator         = errors.New("only the wall creator can perform this action")
	ErrAlreadyMember          = errors.New("user is already a member of this wall")
	ErrWallFull               = errors.New("wall has reached its member limit")
	ErrCreatorCannotLeave     = errors.New("the wall creator cannot leave the wall")
	ErrCreatorCannotBeRemoved = errors.New("the wall creator cannot be removed")
)

type WallService struct {
	wallRepo        repository.WallRepository
	messageRepo     repository.MessageRepository
	joinRequestRepo repository.JoinRequestRepository
	notifications   *NotificationService
}

func NewWallService(
	wallRepo repository.WallRepository,
	messageRepo repository.MessageRepository,
	joinRequestRepo repository.JoinRequestRepository,
	notifications *NotificationService,
) *WallService {
	return &WallService{
		wallRepo:        wallRepo,
		messageRepo:     messageRepo,
		joinRequestRepo: joinRequestRepo,
		notifications:   notifications,
	}
}

type CreateWallInput struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Tags        []string             `json:"tags"`
	IsPublic    *bool                `json:"is_public"`
	Settings    *domain.WallSettings `json:"settings"`
}

type UpdateWallInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Category    *string              `json:"category"`
	Tags        []string             `json:"tags"`
	IsPublic    *bool                `json:"is_public"`
	Settings    *domain.WallSettings `json:"settings"`
}

func (s *WallService) Create(ctx context.Context, creatorID uuid.UUID, input CreateWallInput) (*domain.Wall, error) {
	// Name uniqueness je case-insensitive
	existing, err := s.wallRepo.GetByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWallNameTaken
	}

	settings := domain.DefaultWallSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	var desc *string
	if input.Description != "" {
		desc = &input.Description
	}

	wall := &domain.Wall{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: desc,
		Category:    input.Category,
		Tags:        input.Tags,
		CreatorID:   creatorID,
		IsPublic:    isPublic,
		IsActive:    true,
		Settings:    settings,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.wallRepo.Create(ctx, wall); err != nil {
		if isDuplicateError(err) {
			return nil, ErrWallNameTaken
		}
		return nil, fmt.Errorf("creating wall: %w", err)
	}

	// Creator je uvijek implicitni admin member
	member := &domain.WallMember{
		WallID:   wall.ID,
		UserID:   creatorID,
		Role:     domain.RoleAdmin,
		JoinedAt: time.Now(),
	}
	if err := s.wallRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("adding creator as member: %w", err)
	}

	wall.MemberCount = 1
	return wall, nil
}

func (s *WallService) GetByID(ctx context.Context, callerID, wallID uuid.UUID) (*domain.Wall, error) {
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
	return wall, nil
}

func (s *WallService) List(ctx context.Context) ([]domain.Wall, error) {
	walls, err := s.wallRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if walls == nil {
		walls = []domain.Wall{}
	}
	return walls, nil
}

func (s *WallService) Update(ctx context.Context, userID, wallID uuid.UUID, input UpdateWallInput) (*domain.Wall, error) {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil || !wall.IsActive {
		return nil, ErrWallNotFound
	}

	member, err := s.wallRepo.GetMember(ctx, wallID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotWallAdmin
	}

	if input.Name != nil && *input.Name != wall.Name {
		existing, err := s.wallRepo.GetByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != wall.ID {
			return nil, ErrWallNameTaken
		}
		wall.Name = *input.Name
	}
	if input.Description != nil {
		wall.Description = input.Description
	}
	if input.Category != nil {
		wall.Category = *input.Category
	}
	if input.Tags != nil {
		wall.Tags = input.Tags
	}
	if input.IsPublic != nil {
		wall.IsPublic = *input.IsPublic
	}
	if input.Settings != nil {
		wall.Settings = *input.Settings
	}

	if err := s.wallRepo.Update(ctx, wall); err != nil {
		if isDuplicateError(err) {
			return nil, ErrWallNameTaken
		}
		return nil, fmt.Errorf("updating wall: %w", err)
	}

	return wall, nil
}

// Delete soft-deletes a wall: deactivates it, cascades soft-delete to all of
// its messages and purges pending join requests. Creator only.
func (s *WallService) Delete(ctx context.Context, userID, wallID uuid.UUID) error {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return err
	}
	if wall == nil || !wall.IsActive {
		return ErrWallNotFound
	}
	if wall.CreatorID != userID {
		return ErrNotWallCreator
	}

	if err := s.wallRepo.Deactivate(ctx, wallID); err != nil {
		return fmt.Errorf("deactivating wall: %w", err)
	}
	if err := s.messageRepo.SoftDeleteByWall(ctx, wallID, userID); err != nil {
		return fmt.Errorf("cascading message delete: %w", err)
	}
	if err := s.joinRequestRepo.DeletePendingByWall(ctx, wallID); err != nil {
		return fmt.Errorf("purging join requests: %w", err)
	}
	return nil
}

func (s *WallService) Leave(ctx context.Context, userID, wallID uuid.UUID) error {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return err
	}
	if wall == nil {
		return ErrWallNotFound
	}
	if wall.CreatorID == userID {
		return ErrCreatorCannotLeave
	}

	member, err := s.wallRepo.GetMember(ctx, wallID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}

	return s.wallRepo.RemoveMember(ctx, wallID, userID)
}

func (s *WallService) RemoveMember(ctx context.Context, requesterID, wallID, targetID uuid.UUID) error {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return err
	}
	if wall == nil {
		return ErrWallNotFound
	}
	if wall.CreatorID == targetID {
		return ErrCreatorCannotBeRemoved
	}

	requester, err := s.wallRepo.GetMember(ctx, wallID, requesterID)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() {
		return ErrNotWallAdmin
	}

	target, err := s.wallRepo.GetMember(ctx, wallID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}

	if err := s.wallRepo.RemoveMember(ctx, wallID, targetID); err != nil {
		return err
	}

	s.notifications.Notify(ctx, targetID, &requesterID, domain.NotificationMemberRemoved,
		"Removed from wall",
		fmt.Sprintf("You have been removed from %q", wall.Name),
		map[string]any{"wall_id": wall.ID}, domain.PriorityNormal)

	return nil
}

// PromoteAdmin grants the admin role to an existing member.
func (s *WallService) PromoteAdmin(ctx context.Context, requesterID, wallID, targetID uuid.UUID) error {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return err
	}
	if wall == nil || !wall.IsActive {
		return ErrWallNotFound
	}

	requester, err := s.wallRepo.GetMember(ctx, wallID, requesterID)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() {
		return ErrNotWallAdmin
	}

	target, err := s.wallRepo.GetMember(ctx, wallID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}
	if target.IsAdmin() {
		return nil
	}

	if err := s.wallRepo.SetMemberRole(ctx, wallID, targetID, domain.RoleAdmin); err != nil {
		return err
	}

	s.notifications.Notify(ctx, targetID, &requesterID, domain.NotificationAdminPromotion,
		"You are now an admin",
		fmt.Sprintf("You have been made an admin of %q", wall.Name),
		map[string]any{"wall_id": wall.ID}, domain.PriorityNormal)

	return nil
}

func (s *WallService) ListMembers(ctx context.Context, callerID, wallID uuid.UUID) ([]domain.WallMember, error) {
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
	return s.wallRepo.ListMembers(ctx, wallID)
}

// Helper za detekciju duplicate key errora iz pgx (SQLSTATE 23505)
func isDuplicateError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
