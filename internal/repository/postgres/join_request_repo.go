package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koltech/wallline/internal/domain"
)

type JoinRequestRepo struct {
	pool *pgxpool.Pool
}

func NewJoinRequestRepo(pool *pgxpool.Pool) *JoinRequestRepo {
	return &JoinRequestRepo{pool: pool}
}

func (r *JoinRequestRepo) Create(ctx context.Context, req *domain.JoinRequest) error {
	query := `
		INSERT INTO join_requests (id, wall_id, user_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.WallID, req.UserID, req.Message, req.Status, req.CreatedAt,
	)
	return err
}

func (r *JoinRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.wall_id, jr.user_id, jr.message, jr.status,
			jr.reviewer_id, jr.review_message, jr.created_at, jr.resolved_at,
			u.username, u.display_name
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.id = $1`
	return r.scanRequest(ctx, query, id)
}

// GetPending returns the unresolved request for a (wall, user) pair, if any.
// The partial unique index on (wall_id, user_id) WHERE status = 'pending'
// guarantees at most one row.
func (r *JoinRequestRepo) GetPending(ctx context.Context, wallID, userID uuid.UUID) (*domain.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.wall_id, jr.user_id, jr.message, jr.status,
			jr.reviewer_id, jr.review_message, jr.created_at, jr.resolved_at,
			u.username, u.display_name
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.wall_id = $1 AND jr.user_id = $2 AND jr.status = 'pending'`
	var req domain.JoinRequest
	err := r.pool.QueryRow(ctx, query, wallID, userID).Scan(
		&req.ID, &req.WallID, &req.UserID, &req.Message, &req.Status,
		&req.ReviewerID, &req.ReviewMessage, &req.CreatedAt, &req.ResolvedAt,
		&req.Username, &req.DisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}

func (r *JoinRequestRepo) ListPendingByWall(ctx context.Context, wallID uuid.UUID) ([]domain.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.wall_id, jr.user_id, jr.message, jr.status,
			jr.reviewer_id, jr.review_message, jr.created_at, jr.resolved_at,
			u.username, u.display_name
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.wall_id = $1 AND jr.status = 'pending'
		ORDER BY jr.created_at`

	rows, err := r.pool.Query(ctx, query, wallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.JoinRequest
	for rows.Next() {
		var req domain.JoinRequest
		if err := rows.Scan(
			&req.ID, &req.WallID, &req.UserID, &req.Message, &req.Status,
			&req.ReviewerID, &req.ReviewMessage, &req.CreatedAt, &req.ResolvedAt,
			&req.Username, &req.DisplayName,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Resolve flips a pending request into a terminal state. The status guard
// makes resolution idempotent-safe under concurrent admin responses.
func (r *JoinRequestRepo) Resolve(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID, reviewMessage *string) error {
	query := `
		UPDATE join_requests
		SET status = $1, reviewer_id = $2, review_message = $3, resolved_at = NOW()
		WHERE id = $4 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, query, status, reviewerID, reviewMessage, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *JoinRequestRepo) DeletePendingByWall(ctx context.Context, wallID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM join_requests WHERE wall_id = $1 AND status = 'pending'`, wallID)
	return err
}

func (r *JoinRequestRepo) scanRequest(ctx context.Context, query string, arg any) (*domain.JoinRequest, error) {
	var req domain.JoinRequest
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&req.ID, &req.WallID, &req.UserID, &req.Message, &req.Status,
		&req.ReviewerID, &req.ReviewMessage, &req.CreatedAt, &req.ResolvedAt,
		&req.Username, &req.DisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &req, err
}
