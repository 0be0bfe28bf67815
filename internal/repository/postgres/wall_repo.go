package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koltech/wallline/internal/domain"
)

type WallRepo struct {
	pool *pgxpool.Pool
}

func NewWallRepo(pool *pgxpool.Pool) *WallRepo {
	return &WallRepo{pool: pool}
}

const wallColumns = `w.id, w.name, w.description, w.category, w.tags, w.creator_id,
	w.is_public, w.is_active, w.settings, w.created_at, w.updated_at`

func (r *WallRepo) Create(ctx context.Context, wall *domain.Wall) error {
	query := `
		INSERT INTO walls (id, name, description, category, tags, creator_id, is_public, is_active, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		wall.ID, wall.Name, wall.Description, wall.Category, wall.Tags,
		wall.CreatorID, wall.IsPublic, wall.IsActive, wall.Settings,
		wall.CreatedAt, wall.UpdatedAt,
	)
	return err
}

func (r *WallRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wall, error) {
	query := `
		SELECT ` + wallColumns + `,
			(SELECT COUNT(*) FROM wall_members wm WHERE wm.wall_id = w.id)
		FROM walls w
		WHERE w.id = $1`
	return r.scanWall(ctx, query, id)
}

// GetByName looks up a wall by name, case-insensitively.
func (r *WallRepo) GetByName(ctx context.Context, name string) (*domain.Wall, error) {
	query := `
		SELECT ` + wallColumns + `,
			(SELECT COUNT(*) FROM wall_members wm WHERE wm.wall_id = w.id)
		FROM walls w
		WHERE LOWER(w.name) = LOWER($1)`
	return r.scanWall(ctx, query, name)
}

func (r *WallRepo) List(ctx context.Context, onlyActive bool) ([]domain.Wall, error) {
	query := `
		SELECT ` + wallColumns + `,
			(SELECT COUNT(*) FROM wall_members wm WHERE wm.wall_id = w.id)
		FROM walls w`
	if onlyActive {
		query += ` WHERE w.is_active`
	}
	query += ` ORDER BY w.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var walls []domain.Wall
	for rows.Next() {
		var w domain.Wall
		if err := rows.Scan(
			&w.ID, &w.Name, &w.Description, &w.Category, &w.Tags, &w.CreatorID,
			&w.IsPublic, &w.IsActive, &w.Settings, &w.CreatedAt, &w.UpdatedAt,
			&w.MemberCount,
		); err != nil {
			return nil, err
		}
		walls = append(walls, w)
	}
	return walls, rows.Err()
}

func (r *WallRepo) Update(ctx context.Context, wall *domain.Wall) error {
	query := `
		UPDATE walls
		SET name = $1, description = $2, category = $3, tags = $4, is_public = $5, settings = $6, updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, query,
		wall.Name, wall.Description, wall.Category, wall.Tags,
		wall.IsPublic, wall.Settings, wall.ID,
	)
	return err
}

func (r *WallRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE walls SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *WallRepo) AddMember(ctx context.Context, m *domain.WallMember) error {
	query := `
		INSERT INTO wall_members (wall_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wall_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, m.WallID, m.UserID, m.Role, m.JoinedAt)
	return err
}

func (r *WallRepo) RemoveMember(ctx context.Context, wallID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wall_members WHERE wall_id = $1 AND user_id = $2`, wallID, userID)
	return err
}

func (r *WallRepo) GetMember(ctx context.Context, wallID, userID uuid.UUID) (*domain.WallMember, error) {
	query := `SELECT wall_id, user_id, role, joined_at FROM wall_members WHERE wall_id = $1 AND user_id = $2`
	var m domain.WallMember
	err := r.pool.QueryRow(ctx, query, wallID, userID).Scan(&m.WallID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

func (r *WallRepo) ListMembers(ctx context.Context, wallID uuid.UUID) ([]domain.WallMember, error) {
	query := `
		SELECT wm.wall_id, wm.user_id, wm.role, wm.joined_at, u.username, u.display_name
		FROM wall_members wm
		JOIN users u ON wm.user_id = u.id
		WHERE wm.wall_id = $1
		ORDER BY wm.joined_at`

	rows, err := r.pool.Query(ctx, query, wallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.WallMember
	for rows.Next() {
		var m domain.WallMember
		if err := rows.Scan(&m.WallID, &m.UserID, &m.Role, &m.JoinedAt, &m.Username, &m.DisplayName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *WallRepo) CountMembers(ctx context.Context, wallID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wall_members WHERE wall_id = $1`, wallID).Scan(&count)
	return count, err
}

func (r *WallRepo) SetMemberRole(ctx context.Context, wallID, userID uuid.UUID, role string) error {
	_, err := r.pool.Exec(ctx, `UPDATE wall_members SET role = $1 WHERE wall_id = $2 AND user_id = $3`, role, wallID, userID)
	return err
}

func (r *WallRepo) scanWall(ctx context.Context, query string, arg any) (*domain.Wall, error) {
	var w domain.Wall
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&w.ID, &w.Name, &w.Description, &w.Category, &w.Tags, &w.CreatorID,
		&w.IsPublic, &w.IsActive, &w.Settings, &w.CreatedAt, &w.UpdatedAt,
		&w.MemberCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &w, err
}
