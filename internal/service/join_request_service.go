package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var (
	ErrRequestNotFound       = errors.New("join request not found")
	ErrRequestAlreadyPending = errors.New("a pending join request already exists")
	ErrRequestResolved       = errors.New("join request has already been resolved")
	ErrInvalidRequestAction  = errors.New("action must be approve or reject")
)

type JoinRequestService struct {
	wallRepo        repository.WallRepository
	joinRequestRepo repository.JoinRequestRepository
	notifications   *NotificationService
}

func NewJoinRequestService(
	wallRepo repository.WallRepository,
	joinRequestRepo repository.JoinRequestRepository,
	notifications *NotificationService,
) *JoinRequestService {
	return &JoinRequestService{
		wallRepo:        wallRepo,
		joinRequestRepo: joinRequestRepo,
		notifications:   notifications,
	}
}

// JoinResult reports the outcome of a join attempt: either immediate
// membership or a pending request awaiting admin review.
type JoinResult struct {
	Joined  bool                `json:"joined"`
	Request *domain.JoinRequest `json:"request,omitempty"`
}

// RequestJoin handles a join attempt. Walls without approval grant
// membership immediately; approval-gated walls get a pending request.
func (s *JoinRequestService) RequestJoin(ctx context.Context, userID, wallID uuid.UUID, message *string) (*JoinResult, error) {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}
	if !wall.IsActive {
		return nil, ErrWallInactive
	}

	member, err := s.wallRepo.GetMember(ctx, wallID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	count, err := s.wallRepo.CountMembers(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if count >= wall.Settings.MaxMembers {
		return nil, ErrWallFull
	}

	if !wall.Settings.RequireApproval {
		// AddMember je ON CONFLICT DO NOTHING, pa je concurrent join siguran
		m := &domain.WallMember{
			WallID:   wallID,
			UserID:   userID,
			Role:     domain.RoleMember,
			JoinedAt: time.Now(),
		}
		if err := s.wallRepo.AddMember(ctx, m); err != nil {
			return nil, fmt.Errorf("adding member: %w", err)
		}
		return &JoinResult{Joined: true}, nil
	}

	pending, err := s.joinRequestRepo.GetPending(ctx, wallID, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrRequestAlreadyPending
	}

	req := &domain.JoinRequest{
		ID:        uuid.New(),
		WallID:    wallID,
		UserID:    userID,
		Message:   message,
		Status:    domain.JoinRequestPending,
		CreatedAt: time.Now(),
	}
	if err := s.joinRequestRepo.Create(ctx, req); err != nil {
		if isDuplicateError(err) {
			return nil, ErrRequestAlreadyPending
		}
		return nil, fmt.Errorf("creating join request: %w", err)
	}

	return &JoinResult{Request: req}, nil
}

// Respond resolves a pending request. Approval adds the user to the wall's
// members; either outcome is terminal and notifies the requester.
func (s *JoinRequestService) Respond(ctx context.Context, adminID, wallID, requestID uuid.UUID, action string, reviewMessage *string) (*domain.JoinRequest, error) {
	if action != "approve" && action != "reject" {
		return nil, ErrInvalidRequestAction
	}

	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}

	admin, err := s.wallRepo.GetMember(ctx, wallID, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, ErrNotWallAdmin
	}

	req, err := s.joinRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.WallID != wallID {
		return nil, ErrRequestNotFound
	}
	if req.Status != domain.JoinRequestPending {
		return nil, ErrRequestResolved
	}

	if action == "approve" {
		// Re-check protiv najnovijeg stanja prije nego dodamo membera
		existing, err := s.wallRepo.GetMember(ctx, wallID, req.UserID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			count, err := s.wallRepo.CountMembers(ctx, wallID)
			if err != nil {
				return nil, err
			}
			if count >= wall.Settings.MaxMembers {
				return nil, ErrWallFull
			}
		}

		if err := s.joinRequestRepo.Resolve(ctx, requestID, domain.JoinRequestApproved, adminID, reviewMessage); err != nil {
			return nil, fmt.Errorf("resolving join request: %w", err)
		}
		if existing == nil {
			m := &domain.WallMember{
				WallID:   wallID,
				UserID:   req.UserID,
				Role:     domain.RoleMember,
				JoinedAt: time.Now(),
			}
			if err := s.wallRepo.AddMember(ctx, m); err != nil {
				return nil, fmt.Errorf("adding approved member: %w", err)
			}
		}

		s.notifications.Notify(ctx, req.UserID, &adminID, domain.NotificationJoinApproved,
			"Join request approved",
			fmt.Sprintf("You are now a member of %q", wall.Name),
			map[string]any{"wall_id": wall.ID}, domain.PriorityNormal)

		req.Status = domain.JoinRequestApproved
	} else {
		if err := s.joinRequestRepo.Resolve(ctx, requestID, domain.JoinRequestRejected, adminID, reviewMessage); err != nil {
			return nil, fmt.Errorf("resolving join request: %w", err)
		}

		reason := ""
		if reviewMessage != nil {
			reason = *reviewMessage
		}
		s.notifications.Notify(ctx, req.UserID, &adminID, domain.NotificationJoinRejected,
			"Join request rejected",
			fmt.Sprintf("Your request to join %q was rejected. %s", wall.Name, reason),
			map[string]any{"wall_id": wall.ID}, domain.PriorityNormal)

		req.Status = domain.JoinRequestRejected
	}

	req.ReviewerID = &adminID
	req.ReviewMessage = reviewMessage
	now := time.Now()
	req.ResolvedAt = &now
	return req, nil
}

func (s *JoinRequestService) ListPending(ctx context.Context, adminID, wallID uuid.UUID) ([]domain.JoinRequest, error) {
	wall, err := s.wallRepo.GetByID(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}

	admin, err := s.wallRepo.GetMember(ctx, wallID, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, ErrNotWallAdmin
	}

	reqs, err := s.joinRequestRepo.ListPendingByWall(ctx, wallID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.JoinRequest{}
	}
	return reqs, nil
}
