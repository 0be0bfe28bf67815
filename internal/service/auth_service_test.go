package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koltech/wallline/internal/domain"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	auth := NewAuthService(repo, "test-secret")
	ctx := context.Background()

	resp, err := auth.Register(ctx, RegisterInput{
		Email:       "user@example.com",
		Username:    "user1",
		DisplayName: "User One",
		Password:    "Passw0rd",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "Passw0rd", resp.User.PasswordHash)

	// Duplicate email i username
	_, err = auth.Register(ctx, RegisterInput{Email: "user@example.com", Username: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = auth.Register(ctx, RegisterInput{Email: "other@example.com", Username: "user1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	login, err := auth.Login(ctx, LoginInput{Email: "user@example.com", Password: "Passw0rd"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = auth.Login(ctx, LoginInput{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rd"})
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("S3cretPass")
	require.NoError(t, err)
	assert.Contains(t, hash, ":")

	assert.True(t, verifyPassword("S3cretPass", hash))
	assert.False(t, verifyPassword("S3cretPas", hash))
	assert.False(t, verifyPassword("S3cretPass", "garbage"))

	// Svaki hash ima svoj salt
	other, err := hashPassword("S3cretPass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
