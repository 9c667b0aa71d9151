package services

import (
	"context"
	"testing"
	"time"

	"secretsanta/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawnFakeDB returns Anna -> Bob -> Cid -> Anna, with Cid as Anna's elf and a token on Bob.
func drawnFakeDB() *fakeDB {
	db := newFakeDB("Anna", "Bob", "Cid")
	drawnAt := time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC)
	db.groups[testGroup].IsDrawn = true
	db.groups[testGroup].DrawnAt = &drawnAt
	anna := "p1"
	db.participant("p3").ElfForParticipantID = &anna
	hash := "hash:secret"
	db.participant("p2").AccessTokenHash = &hash
	db.participant("p2").UserID = nil
	db.assignments[testGroup] = []*domain.Assignment{
		{GroupID: testGroup, GiverParticipantID: "p1", ReceiverParticipantID: "p2"},
		{GroupID: testGroup, GiverParticipantID: "p2", ReceiverParticipantID: "p3"},
		{GroupID: testGroup, GiverParticipantID: "p3", ReceiverParticipantID: "p1"},
	}
	return db
}

func TestResultService_GetResult(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		participant  string
		viewer       domain.ResultViewer
		undrawn      bool
		wantReceiver string
		wantErrIs    error
	}{
		{name: "own result", participant: "p1", viewer: domain.ResultViewer{UserID: "u1"}, wantReceiver: "Bob"},
		{name: "elf sees helped result", participant: "p1", viewer: domain.ResultViewer{UserID: "u3"}, wantReceiver: "Bob"},
		{name: "access token", participant: "p2", viewer: domain.ResultViewer{AccessToken: "secret"}, wantReceiver: "Cid"},
		{name: "wrong token", participant: "p2", viewer: domain.ResultViewer{AccessToken: "guess"}, wantErrIs: domain.ErrForbidden},
		{name: "unrelated user", participant: "p1", viewer: domain.ResultViewer{UserID: "u9"}, wantErrIs: domain.ErrForbidden},
		{name: "helped does not see elf result", participant: "p3", viewer: domain.ResultViewer{UserID: "u1"}, wantErrIs: domain.ErrForbidden},
		{name: "owner is not a participant", participant: "p1", viewer: domain.ResultViewer{UserID: testOwner}, wantErrIs: domain.ErrForbidden},
		{name: "unknown participant", participant: "p9", viewer: domain.ResultViewer{UserID: "u1"}, wantErrIs: domain.ErrNotFound},
		{name: "not drawn yet", participant: "p1", viewer: domain.ResultViewer{UserID: "u1"}, undrawn: true, wantErrIs: domain.ErrNotDrawn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := drawnFakeDB()
			if tt.undrawn {
				db.groups[testGroup].IsDrawn = false
				db.groups[testGroup].DrawnAt = nil
				db.assignments[testGroup] = nil
			}
			svc := NewResultService(&fakeGroupRepo{db}, &fakeParticipantRepo{db}, &fakeAssignmentRepo{db}, fakeHasher{}, 5*time.Second)

			got, err := svc.GetResult(ctx, testGroup, tt.participant, tt.viewer)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.participant, got.ParticipantID)
			assert.Equal(t, tt.wantReceiver, got.ReceiverName)
			require.NotNil(t, got.DrawnAt)
		})
	}
}
