package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"secretsanta/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestParticipantRepository_SetElf(t *testing.T) {
	ctx := context.Background()
	helped := "p1"

	tests := []struct {
		name      string
		elfFor    *string
		mock      func(mock sqlmock.Sqlmock)
		wantErrIs error
	}{
		{
			name:   "set link replaces elf rule",
			elfFor: &helped,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT is_drawn FROM groups WHERE id = \$1 FOR SHARE`).
					WithArgs("g1").
					WillReturnRows(sqlmock.NewRows([]string{"is_drawn"}).AddRow(false))
				mock.ExpectExec(`UPDATE participants SET elf_for_participant_id = \$3 WHERE id = \$1 AND group_id = \$2`).
					WithArgs("p2", "g1", "p1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM exclusions WHERE group_id = \$1 AND blocked_participant_id = \$2 AND origin = 'elf'`).
					WithArgs("g1", "p2").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO exclusions (.+) ON CONFLICT (.+) DO NOTHING`).
					WithArgs("g1", "p1", "p2").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "clear link removes elf rule only",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT is_drawn FROM groups`).
					WillReturnRows(sqlmock.NewRows([]string{"is_drawn"}).AddRow(false))
				mock.ExpectExec(`UPDATE participants SET elf_for_participant_id`).
					WithArgs("p2", "g1", nil).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM exclusions`).
					WithArgs("g1", "p2").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:   "unknown participant",
			elfFor: &helped,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT is_drawn FROM groups`).
					WillReturnRows(sqlmock.NewRows([]string{"is_drawn"}).AddRow(false))
				mock.ExpectExec(`UPDATE participants SET elf_for_participant_id`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErrIs: domain.ErrNotFound,
		},
		{
			name:   "drawn group is frozen",
			elfFor: &helped,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT is_drawn FROM groups`).
					WillReturnRows(sqlmock.NewRows([]string{"is_drawn"}).AddRow(true))
				mock.ExpectRollback()
			},
			wantErrIs: domain.ErrAlreadyDrawn,
		},
		{
			name:   "rule insert failure rolls back",
			elfFor: &helped,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT is_drawn FROM groups`).
					WillReturnRows(sqlmock.NewRows([]string{"is_drawn"}).AddRow(false))
				mock.ExpectExec(`UPDATE participants`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`DELETE FROM exclusions`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO exclusions`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErrIs: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewParticipantRepository(db).SetElf(ctx, "g1", "p2", tt.elfFor)
			require.NoError(t, mock.ExpectationsWereMet())
			if tt.wantErrIs != nil {
				require.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParticipantRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	t.Run("token participant", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM participants WHERE id = \$1 AND group_id = \$2`).
			WithArgs("p2", "g1").
			WillReturnRows(sqlmock.NewRows(participantCols).AddRow("p2", "g1", nil, "Bob", nil, nil, "hash", created))

		p, err := NewParticipantRepository(db).GetByID(ctx, "g1", "p2")
		require.NoError(t, err)
		require.Equal(t, "Bob", p.Name)
		require.Nil(t, p.UserID)
		require.Nil(t, p.Email)
		require.NotNil(t, p.AccessTokenHash)
		require.Equal(t, "hash", *p.AccessTokenHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM participants`).
			WillReturnError(sql.ErrNoRows)

		_, err = NewParticipantRepository(db).GetByID(ctx, "g1", "p9")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
