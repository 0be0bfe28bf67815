package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koltech/wallline/internal/domain"
)

func TestReactionToggle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()
	wall := env.newWall(creator, domain.DefaultWallSettings())
	env.addMember(wall.ID, member)

	msg, err := env.messages.Create(ctx, creator, wall.ID, CreateMessageInput{Content: "post"})
	require.NoError(t, err)

	// Dodavanje
	result, err := env.reactions.Toggle(ctx, member, msg.ID, "👍")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, result.Action)
	require.NotNil(t, result.UserReaction)
	assert.Equal(t, "👍", *result.UserReaction)
	assert.Len(t, result.Reactions, 1)
	assert.True(t, env.notifier.has("message_reaction_updated"))

	// Autor dobiva notifikaciju
	reactions := env.notificationRepo.byType(domain.NotificationReaction)
	require.Len(t, reactions, 1)
	assert.Equal(t, creator, reactions[0].RecipientID)

	// Drugi emoji zamjenjuje postojeci
	result, err = env.reactions.Toggle(ctx, member, msg.ID, "🔥")
	require.NoError(t, err)
	assert.Equal(t, ReactionAdded, result.Action)
	require.Len(t, result.Reactions, 1)
	assert.Equal(t, "🔥", result.Reactions[0].Emoji)

	// Zamjena ne salje novu notifikaciju autoru
	assert.Len(t, env.notificationRepo.byType(domain.NotificationReaction), 1)

	// Isti emoji drugi put uklanja reakciju
	result, err = env.reactions.Toggle(ctx, member, msg.ID, "🔥")
	require.NoError(t, err)
	assert.Equal(t, ReactionRemoved, result.Action)
	assert.Nil(t, result.UserReaction)
	assert.Empty(t, result.Reactions)
}

func TestReactionValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()
	wall := env.newWall(creator, domain.DefaultWallSettings())

	msg, err := env.messages.Create(ctx, creator, wall.ID, CreateMessageInput{Content: "post"})
	require.NoError(t, err)

	for _, bad := range []string{"", "thumbs up", "👍👍", "👍🔥", "a👍", "👍 "} {
		_, err := env.reactions.Toggle(ctx, creator, msg.ID, bad)
		assert.ErrorIs(t, err, ErrInvalidEmoji, "reaction %q", bad)
	}
}

func TestReactionRequiresCommentPermission(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()
	member := uuid.New()

	settings := domain.DefaultWallSettings()
	settings.CommentPermissions = domain.PermissionAdmins
	wall := env.newWall(creator, settings)
	env.addMember(wall.ID, member)

	msg, err := env.messages.Create(ctx, creator, wall.ID, CreateMessageInput{Content: "post"})
	require.NoError(t, err)

	_, err = env.reactions.Toggle(ctx, member, msg.ID, "👍")
	assert.ErrorIs(t, err, ErrAdminsOnly)

	_, err = env.reactions.Toggle(ctx, uuid.New(), msg.ID, "👍")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestReactionOnCommentEmitsCommentEvent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()
	wall := env.newWall(creator, domain.DefaultWallSettings())

	root, err := env.messages.Create(ctx, creator, wall.ID, CreateMessageInput{Content: "post"})
	require.NoError(t, err)
	comment, err := env.comments.Add(ctx, creator, root.ID, AddCommentInput{Content: "c"})
	require.NoError(t, err)

	_, err = env.reactions.Toggle(ctx, creator, comment.ID, "👍")
	require.NoError(t, err)
	assert.True(t, env.notifier.has("comment_reaction_updated"))
	assert.False(t, env.notifier.has("message_reaction_updated"))

	// Vlastita reakcija ne stvara notifikaciju
	assert.Empty(t, env.notificationRepo.byType(domain.NotificationReaction))
}

func TestReactionOnDeletedMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	creator := uuid.New()
	wall := env.newWall(creator, domain.DefaultWallSettings())

	msg, err := env.messages.Create(ctx, creator, wall.ID, CreateMessageInput{Content: "post"})
	require.NoError(t, err)
	require.NoError(t, env.messages.Delete(ctx, creator, msg.ID))

	_, err = env.reactions.Toggle(ctx, creator, msg.ID, "👍")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
