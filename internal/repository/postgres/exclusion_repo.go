package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"secretsanta/internal/domain"
)

type exclusionRepository struct {
	DB *sql.DB
}

func NewExclusionRepository(db *sql.DB) domain.ExclusionRepository {
	return &exclusionRepository{
		DB: db,
	}
}

const exclusionColumns = `id, group_id, blocker_participant_id, blocked_participant_id, origin, created_at`

func scanExclusion(scan func(dest ...any) error) (*domain.ExclusionRule, error) {
	e := &domain.ExclusionRule{}
	var origin string
	if err := scan(&e.ID, &e.GroupID, &e.BlockerParticipantID, &e.BlockedParticipantID, &origin, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Origin = domain.ExclusionOrigin(origin)
	return e, nil
}

// Create inserts the rules in one transaction. All rules must belong to the same group; the
// group must not be drawn.
func (r *exclusionRepository) Create(ctx context.Context, rules ...*domain.ExclusionRule) (err error) {
	if len(rules) == 0 {
		return nil
	}
	groupID := rules[0].GroupID
	for _, rule := range rules {
		if rule.GroupID != groupID {
			return fmt.Errorf("exclusions span groups %s and %s: %w", groupID, rule.GroupID, domain.ErrInvalidInput)
		}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockUndrawnGroup(ctx, tx, groupID); err != nil {
		return err
	}
	query := `
		INSERT INTO exclusions (group_id, blocker_participant_id, blocked_participant_id, origin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, rule := range rules {
		err = tx.QueryRowContext(ctx, query, rule.GroupID, rule.BlockerParticipantID, rule.BlockedParticipantID, string(rule.Origin), rule.CreatedAt).
			Scan(&rule.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateExclusion
			}
			return err
		}
	}
	return tx.Commit()
}

func (r *exclusionRepository) GetByID(ctx context.Context, groupID, id string) (*domain.ExclusionRule, error) {
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE id = $1 AND group_id = $2`
	e, err := scanExclusion(r.DB.QueryRowContext(ctx, query, id, groupID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *exclusionRepository) ListByGroupID(ctx context.Context, groupID string) ([]*domain.ExclusionRule, error) {
	return listExclusions(ctx, r.DB, groupID)
}

func listExclusions(ctx context.Context, q queryer, groupID string) ([]*domain.ExclusionRule, error) {
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE group_id = $1 ORDER BY created_at, id`
	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := make([]*domain.ExclusionRule, 0)
	for rows.Next() {
		e, err := scanExclusion(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, e)
	}
	return rules, rows.Err()
}

func (r *exclusionRepository) ListByGroupIDPaged(ctx context.Context, groupID string, params domain.PaginationParams) ([]*domain.ExclusionRule, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM exclusions WHERE group_id = $1`, groupID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE group_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, groupID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	rules := make([]*domain.ExclusionRule, 0)
	for rows.Next() {
		e, err := scanExclusion(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		rules = append(rules, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// Delete removes a user-owned rule. Elf-derived rules are only removed through SetElf.
func (r *exclusionRepository) Delete(ctx context.Context, groupID, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockUndrawnGroup(ctx, tx, groupID); err != nil {
		return err
	}
	var origin string
	err = tx.QueryRowContext(ctx, `SELECT origin FROM exclusions WHERE id = $1 AND group_id = $2 FOR UPDATE`, id, groupID).Scan(&origin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if domain.ExclusionOrigin(origin) == domain.ExclusionOriginElf {
		return domain.ErrProtectedExclusion
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exclusions WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}
