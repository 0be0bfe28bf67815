package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koltech/wallline/internal/domain"
)

func TestJoinWithoutApprovalIsImmediate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	wall := env.newWall(uuid.New(), domain.DefaultWallSettings())
	user := uuid.New()

	result, err := env.joins.RequestJoin(ctx, user, wall.ID, nil)
	require.NoError(t, err)
	assert.True(t, result.Joined)
	assert.Nil(t, result.Request)

	member, err := env.wallRepo.GetMember(ctx, wall.ID, user)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, domain.RoleMember, member.Role)
}

func TestJoinWithApprovalCreatesPendingRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	settings := domain.DefaultWallSettings()
	settings.RequireApproval = true
	wall := env.newWall(uuid.New(), settings)
	user := uuid.New()

	msg := "let me in"
	result, err := env.joins.RequestJoin(ctx, user, wall.ID, &msg)
	require.NoError(t, err)
	assert.False(t, result.Joined)
	require.NotNil(t, result.Request)
	assert.Equal(t, domain.JoinRequestPending, result.Request.Status)

	// Drugi pokusaj dok je prvi pending
	_, err = env.joins.RequestJoin(ctx, user, wall.ID, nil)
	assert.ErrorIs(t, err, ErrRequestAlreadyPending)

	member, err := env.wallRepo.GetMember(ctx, wall.ID, user)
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestJoinRejectedWhenAlreadyMemberOrFull(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.MaxMembers = 2
	wall := env.newWall(creator, settings)

	_, err := env.joins.RequestJoin(ctx, creator, wall.ID, nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.joins.RequestJoin(ctx, uuid.New(), wall.ID, nil)
	require.NoError(t, err)

	_, err = env.joins.RequestJoin(ctx, uuid.New(), wall.ID, nil)
	assert.ErrorIs(t, err, ErrWallFull)
}

func TestJoinRequestApprove(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.RequireApproval = true
	wall := env.newWall(creator, settings)
	user := uuid.New()

	result, err := env.joins.RequestJoin(ctx, user, wall.ID, nil)
	require.NoError(t, err)

	// Ne-admin ne moze odgovoriti
	_, err = env.joins.Respond(ctx, uuid.New(), wall.ID, result.Request.ID, "approve", nil)
	assert.ErrorIs(t, err, ErrNotWallAdmin)

	req, err := env.joins.Respond(ctx, creator, wall.ID, result.Request.ID, "approve", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestApproved, req.Status)
	assert.NotNil(t, req.ResolvedAt)

	member, err := env.wallRepo.GetMember(ctx, wall.ID, user)
	require.NoError(t, err)
	require.NotNil(t, member)

	approved := env.notificationRepo.byType(domain.NotificationJoinApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, user, approved[0].RecipientID)

	// Resolved request je terminalan
	_, err = env.joins.Respond(ctx, creator, wall.ID, result.Request.ID, "reject", nil)
	assert.ErrorIs(t, err, ErrRequestResolved)
}

func TestJoinRequestReject(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.RequireApproval = true
	wall := env.newWall(creator, settings)
	user := uuid.New()

	result, err := env.joins.RequestJoin(ctx, user, wall.ID, nil)
	require.NoError(t, err)

	reason := "not a good fit"
	req, err := env.joins.Respond(ctx, creator, wall.ID, result.Request.ID, "reject", &reason)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestRejected, req.Status)

	member, err := env.wallRepo.GetMember(ctx, wall.ID, user)
	require.NoError(t, err)
	assert.Nil(t, member)

	rejected := env.notificationRepo.byType(domain.NotificationJoinRejected)
	require.Len(t, rejected, 1)

	// Nakon odbijanja user smije poslati novi request
	_, err = env.joins.RequestJoin(ctx, user, wall.ID, nil)
	require.NoError(t, err)
}

func TestJoinRequestInvalidAction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.RequireApproval = true
	wall := env.newWall(creator, settings)

	result, err := env.joins.RequestJoin(ctx, uuid.New(), wall.ID, nil)
	require.NoError(t, err)

	_, err = env.joins.Respond(ctx, creator, wall.ID, result.Request.ID, "maybe", nil)
	assert.ErrorIs(t, err, ErrInvalidRequestAction)
}

func TestListPendingAdminOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.RequireApproval = true
	wall := env.newWall(creator, settings)

	_, err := env.joins.RequestJoin(ctx, uuid.New(), wall.ID, nil)
	require.NoError(t, err)

	_, err = env.joins.ListPending(ctx, uuid.New(), wall.ID)
	assert.ErrorIs(t, err, ErrNotWallAdmin)

	pending, err := env.joins.ListPending(ctx, creator, wall.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
