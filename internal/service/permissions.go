package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/koltech/wallline/internal/domain"
	"github.com/koltech/wallline/internal/repository"
)

var (
	ErrWallInactive    = errors.New("wall is no longer active")
	ErrNotMember       = errors.New("user is not a member of this wall")
	ErrAdminsOnly      = errors.New("only wall admins can perform this action")
	ErrUnauthenticated = errors.New("authentication required")
)

// AnonymousUser marks an unauthenticated caller on read paths.
var AnonymousUser = uuid.Nil

// checkReadAccess gates reads. Public walls are open to anonymous callers;
// private walls require membership.
func checkReadAccess(ctx context.Context, wallRepo repository.WallRepository, wall *domain.Wall, userID uuid.UUID) error {
	if !wall.IsActive {
		return ErrWallInactive
	}
	if wall.IsPublic {
		return nil
	}
	if userID == AnonymousUser {
		return ErrUnauthenticated
	}
	member, err := wallRepo.GetMember(ctx, wall.ID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	return nil
}

// checkWritePermission resolves the wall's post/comment policy for a caller:
// "members" needs membership, "admins" needs the admin role.
func checkWritePermission(ctx context.Context, wallRepo repository.WallRepository, wall *domain.Wall, userID uuid.UUID, policy string) error {
	if !wall.IsActive {
		return ErrWallInactive
	}
	if userID == AnonymousUser {
		return ErrUnauthenticated
	}
	member, err := wallRepo.GetMember(ctx, wall.ID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotMember
	}
	if policy == domain.PermissionAdmins && !member.IsAdmin() {
		return ErrAdminsOnly
	}
	return nil
}

func checkCanPost(ctx context.Context, wallRepo repository.WallRepository, wall *domain.Wall, userID uuid.UUID) error {
	return checkWritePermission(ctx, wallRepo, wall, userID, wall.Settings.PostPermissions)
}

func checkCanComment(ctx context.Context, wallRepo repository.WallRepository, wall *domain.Wall, userID uuid.UUID) error {
	return checkWritePermission(ctx, wallRepo, wall, userID, wall.Settings.CommentPermissions)
}
