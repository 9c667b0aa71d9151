package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"secretsanta/internal/domain"
)

type drawStore struct {
	DB *sql.DB
}

// NewDrawStore returns the transactional writer of assignments and group draw state.
func NewDrawStore(db *sql.DB) domain.DrawStore {
	return &drawStore{DB: db}
}

// CommitDraw runs the whole draw inside one transaction:
//
//  1. lock the group row (FOR UPDATE) and reject it if already drawn,
//  2. load participants and exclusions under that lock,
//  3. let draw compute the assignments,
//  4. insert all assignments and flip is_drawn with a compare-and-set.
//
// Any failure rolls the transaction back, so no assignments exist without is_drawn and
// is_drawn is never set without assignments.
func (s *drawStore) CommitDraw(ctx context.Context, groupID string, drawnAt time.Time, draw domain.DrawFunc) (out []*domain.Assignment, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin draw: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	group, err := getGroup(ctx, tx, groupID, "FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if group.IsDrawn {
		return nil, domain.NewDrawError(domain.ErrAlreadyDrawn, "this group has already been drawn", "")
	}

	participants, err := listParticipants(ctx, tx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	exclusions, err := listExclusions(ctx, tx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	assignments, err := draw(&domain.DrawSnapshot{Group: group, Participants: participants, Exclusions: exclusions})
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, domain.NewDrawError(domain.ErrDrawInternal, "the draw produced no assignments", "")
	}

	givers := make([]string, len(assignments))
	receivers := make([]string, len(assignments))
	byGiver := make(map[string]*domain.Assignment, len(assignments))
	for i, a := range assignments {
		a.GroupID = groupID
		a.CreatedAt = drawnAt
		givers[i] = a.GiverParticipantID
		receivers[i] = a.ReceiverParticipantID
		byGiver[a.GiverParticipantID] = a
	}

	rows, err := tx.QueryContext(ctx, `
		INSERT INTO assignments (group_id, giver_participant_id, receiver_participant_id, created_at)
		SELECT $1, t.giver, t.receiver, $4
		FROM unnest($2::uuid[], $3::uuid[]) AS t(giver, receiver)
		RETURNING id, giver_participant_id
	`, groupID, pq.Array(givers), pq.Array(receivers), drawnAt)
	if err != nil {
		return nil, fmt.Errorf("insert assignments: %w", err)
	}
	inserted := 0
	for rows.Next() {
		var id, giver string
		if err = rows.Scan(&id, &giver); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if a, ok := byGiver[giver]; ok {
			a.ID = id
		}
		inserted++
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("insert assignments: %w", err)
	}
	rows.Close()
	if inserted != len(assignments) {
		err = fmt.Errorf("inserted %d of %d assignments", inserted, len(assignments))
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE groups SET is_drawn = TRUE, drawn_at = $2, updated_at = $2 WHERE id = $1 AND is_drawn = FALSE`,
		groupID, drawnAt)
	if err != nil {
		return nil, fmt.Errorf("mark group drawn: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("mark group drawn: %w", err)
	}
	if n != 1 {
		err = domain.NewDrawError(domain.ErrAlreadyDrawn, "this group has already been drawn", "")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit draw: %w", err)
	}
	return assignments, nil
}
