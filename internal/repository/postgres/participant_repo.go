package postgres

import (
	"context"
	"database/sql"
	"errors"

	"secretsanta/internal/domain"
)

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{
		DB: db,
	}
}

const participantColumns = `id, group_id, user_id, name, email, elf_for_participant_id, access_token_hash, created_at`

func scanParticipant(scan func(dest ...any) error) (*domain.Participant, error) {
	p := &domain.Participant{}
	var userID, email, elfFor, tokenHash sql.NullString
	if err := scan(&p.ID, &p.GroupID, &userID, &p.Name, &email, &elfFor, &tokenHash, &p.CreatedAt); err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	if elfFor.Valid {
		p.ElfForParticipantID = &elfFor.String
	}
	if tokenHash.Valid {
		p.AccessTokenHash = &tokenHash.String
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, groupID, id string) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1 AND group_id = $2`
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, id, groupID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) ListByGroupID(ctx context.Context, groupID string) ([]*domain.Participant, error) {
	return listParticipants(ctx, r.DB, groupID)
}

func listParticipants(ctx context.Context, q queryer, groupID string) ([]*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE group_id = $1 ORDER BY created_at, id`
	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) SetElf(ctx context.Context, groupID, participantID string, elfForID *string) (err error) {
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

	var elfFor sql.NullString
	if elfForID != nil {
		elfFor = sql.NullString{String: *elfForID, Valid: true}
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE participants SET elf_for_participant_id = $3 WHERE id = $1 AND group_id = $2`,
		participantID, groupID, elfFor)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM exclusions WHERE group_id = $1 AND blocked_participant_id = $2 AND origin = 'elf'`,
		groupID, participantID); err != nil {
		return err
	}
	if elfForID != nil {
		// A user rule for the same pair already forbids it; keep that one.
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO exclusions (group_id, blocker_participant_id, blocked_participant_id, origin)
			VALUES ($1, $2, $3, 'elf')
			ON CONFLICT (group_id, blocker_participant_id, blocked_participant_id) DO NOTHING`,
			groupID, *elfForID, participantID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *participantRepository) SetAccessTokenHash(ctx context.Context, participantID, hash string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE participants SET access_token_hash = $2 WHERE id = $1`, participantID, hash)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
