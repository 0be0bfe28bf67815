package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type WallRepository interface {
	Create(ctx context.Context, wall *domain.Wall) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wall, error)
	GetByName(ctx context.Context, name string) (*domain.Wall, error)
	List(ctx context.Context, onlyActive bool) ([]domain.Wall, error)
	Update(ctx context.Context, wall *domain.Wall) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, member *domain.WallMember) error
	RemoveMember(ctx context.Context, wallID, userID uuid.UUID) error
	GetMember(ctx context.Context, wallID, userID uuid.UUID) (*domain.WallMember, error)
	ListMembers(ctx context.Context, wallID uuid.UUID) ([]domain.WallMember, error)
	CountMembers(ctx context.Context, wallID uuid.UUID) (int, error)
	SetMemberRole(ctx context.Context, wallID, userID uuid.UUID, role string) error
}

type JoinRequestRepository interface {
	Create(ctx context.Context, req *domain.JoinRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.JoinRequest, error)
	GetPending(ctx context.Context, wallID, userID uuid.UUID) (*domain.JoinRequest, error)
	ListPendingByWall(ctx context.Context, wallID uuid.UUID) ([]domain.JoinRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, reviewMessage *string) error
	DeletePendingByWall(ctx context.Context, wallID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListByWall(ctx context.Context, wallID uuid.UUID, limit, offset int) ([]domain.Message, error)
	ListComments(ctx context.Context, rootMessageID uuid.UUID) ([]domain.Message, error)
	UpdateContent(ctx context.Context, msg *domain.Message) error
	UpdateAttachments(ctx context.Context, id uuid.UUID, attachments []domain.Attachment) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool, pinnedBy *uuid.UUID) error
	IncrementReportCount(ctx context.Context, id uuid.UUID) (int, error)
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	SoftDeleteByWall(ctx context.Context, wallID, deletedBy uuid.UUID) error
}

type ReactionRepository interface {
	Get(ctx context.Context, messageID, userID uuid.UUID) (*domain.Reaction, error)
	Upsert(ctx context.Context, reaction *domain.Reaction) error
	Delete(ctx context.Context, messageID, userID uuid.UUID) error
	ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
}
