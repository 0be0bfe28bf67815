package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koltech/wallline/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const messageColumns = `m.id, m.wall_id, m.author_id, m.content, m.attachments, m.tags,
	m.visibility, m.parent_message_id, m.parent_comment_id, m.is_pinned, m.pinned_by,
	m.edited_at, m.deleted_at, m.deleted_by, m.report_count, m.created_at,
	u.username, u.display_name`

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, wall_id, author_id, content, attachments, tags, visibility,
			parent_message_id, parent_comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.WallID, msg.AuthorID, msg.Content, msg.Attachments, msg.Tags,
		msg.Visibility, msg.ParentMessageID, msg.ParentCommentID, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.author_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&msg)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListByWall returns root posts only (comments are fetched per message),
// pinned first, newest first within each group. Soft-deleted rows are
// excluded.
func (r *MessageRepo) ListByWall(ctx context.Context, wallID uuid.UUID, limit, offset int) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.author_id = u.id
		WHERE m.wall_id = $1 AND m.parent_message_id IS NULL AND m.deleted_at IS NULL
		ORDER BY m.is_pinned DESC, m.created_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryMessages(ctx, query, wallID, limit, offset)
}

// ListComments returns every comment under a root message as one flattened,
// chronologically ordered list, regardless of reply nesting depth.
func (r *MessageRepo) ListComments(ctx context.Context, rootMessageID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON m.author_id = u.id
		WHERE m.parent_message_id = $1 AND m.deleted_at IS NULL
		ORDER BY m.created_at`

	return r.queryMessages(ctx, query, rootMessageID)
}

func (r *MessageRepo) UpdateContent(ctx context.Context, msg *domain.Message) error {
	query := `UPDATE messages SET content = $1, tags = $2, edited_at = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, msg.Content, msg.Tags, time.Now(), msg.ID)
	return err
}

func (r *MessageRepo) UpdateAttachments(ctx context.Context, id uuid.UUID, attachments []domain.Attachment) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET attachments = $1 WHERE id = $2`, attachments, id)
	return err
}

func (r *MessageRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool, pinnedBy *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET is_pinned = $1, pinned_by = $2 WHERE id = $3`, pinned, pinnedBy, id)
	return err
}

func (r *MessageRepo) IncrementReportCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE messages SET report_count = report_count + 1 WHERE id = $1 RETURNING report_count`, id,
	).Scan(&count)
	return count, err
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET deleted_at = $1, deleted_by = $2 WHERE id = $3`, time.Now(), deletedBy, id)
	return err
}

// SoftDeleteByWall cascades a wall deactivation to all of its messages.
func (r *MessageRepo) SoftDeleteByWall(ctx context.Context, wallID, deletedBy uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET deleted_at = $1, deleted_by = $2 WHERE wall_id = $3 AND deleted_at IS NULL`,
		time.Now(), deletedBy, wallID,
	)
	return err
}

func (r *MessageRepo) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(scanTargets(&msg)...); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanTargets(msg *domain.Message) []any {
	return []any{
		&msg.ID, &msg.WallID, &msg.AuthorID, &msg.Content, &msg.Attachments, &msg.Tags,
		&msg.Visibility, &msg.ParentMessageID, &msg.ParentCommentID, &msg.IsPinned, &msg.PinnedBy,
		&msg.EditedAt, &msg.DeletedAt, &msg.DeletedBy, &msg.ReportCount, &msg.CreatedAt,
		&msg.AuthorUsername, &msg.AuthorDisplayName,
	}
}
