package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koltech/wallline/internal/domain"
)

type ReactionRepo struct {
	pool *pgxpool.Pool
}

func NewReactionRepo(pool *pgxpool.Pool) *ReactionRepo {
	return &ReactionRepo{pool: pool}
}

func (r *ReactionRepo) Get(ctx context.Context, messageID, userID uuid.UUID) (*domain.Reaction, error) {
	query := `SELECT message_id, user_id, emoji, created_at FROM reactions WHERE message_id = $1 AND user_id = $2`
	var reaction domain.Reaction
	err := r.pool.QueryRow(ctx, query, messageID, userID).Scan(
		&reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &reaction, err
}

// Upsert sets the user's reaction on an entity, replacing any prior emoji.
// The (message_id, user_id) primary key enforces one reaction per user.
func (r *ReactionRepo) Upsert(ctx context.Context, reaction *domain.Reaction) error {
	query := `
		INSERT INTO reactions (message_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji, created_at = EXCLUDED.created_at`
	_, err := r.pool.Exec(ctx, query, reaction.MessageID, reaction.UserID, reaction.Emoji, reaction.CreatedAt)
	return err
}

func (r *ReactionRepo) Delete(ctx context.Context, messageID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reactions WHERE message_id = $1 AND user_id = $2`, messageID, userID)
	return err
}

func (r *ReactionRepo) ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	query := `
		SELECT re.message_id, re.user_id, re.emoji, re.created_at, u.username
		FROM reactions re
		JOIN users u ON re.user_id = u.id
		WHERE re.message_id = $1
		ORDER BY re.created_at`

	rows, err := r.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var reaction domain.Reaction
		if err := rows.Scan(&reaction.MessageID, &reaction.UserID, &reaction.Emoji, &reaction.CreatedAt, &reaction.Username); err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}
