package postgres

import (
	"context"
	"database/sql"
	"errors"

	"secretsanta/internal/domain"
)

type groupRepository struct {
	DB *sql.DB
}

func NewGroupRepository(db *sql.DB) domain.GroupRepository {
	return &groupRepository{
		DB: db,
	}
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	return getGroup(ctx, r.DB, id, "")
}

const groupColumns = `id, name, owner_id, is_drawn, drawn_at, created_at, updated_at`

// getGroup loads one group. lockClause is appended to the query, e.g. "FOR UPDATE".
func getGroup(ctx context.Context, q queryer, id, lockClause string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 ` + lockClause
	g := &domain.Group{}
	var drawnAt sql.NullTime
	err := q.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.OwnerID, &g.IsDrawn, &drawnAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if drawnAt.Valid {
		g.DrawnAt = &drawnAt.Time
	}
	return g, nil
}

// lockUndrawnGroup takes a share lock on the group row, which conflicts with the draw's
// FOR UPDATE, and fails with domain.ErrAlreadyDrawn once the group is drawn.
func lockUndrawnGroup(ctx context.Context, tx *sql.Tx, groupID string) error {
	var isDrawn bool
	err := tx.QueryRowContext(ctx, `SELECT is_drawn FROM groups WHERE id = $1 FOR SHARE`, groupID).Scan(&isDrawn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if isDrawn {
		return domain.ErrAlreadyDrawn
	}
	return nil
}
