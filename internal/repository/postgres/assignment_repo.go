package postgres

import (
	"context"
	"database/sql"
	"errors"

	"secretsanta/internal/domain"
)

type assignmentRepository struct {
	DB *sql.DB
}

func NewAssignmentRepository(db *sql.DB) domain.AssignmentRepository {
	return &assignmentRepository{
		DB: db,
	}
}

func (r *assignmentRepository) GetByGiver(ctx context.Context, groupID, giverID string) (*domain.Assignment, error) {
	query := `
		SELECT id, group_id, giver_participant_id, receiver_participant_id, created_at
		FROM assignments
		WHERE group_id = $1 AND giver_participant_id = $2
	`
	a := &domain.Assignment{}
	err := r.DB.QueryRowContext(ctx, query, groupID, giverID).
		Scan(&a.ID, &a.GroupID, &a.GiverParticipantID, &a.ReceiverParticipantID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
