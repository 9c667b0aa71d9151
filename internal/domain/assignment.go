package domain

import (
	"context"
	"time"
)

// Assignment pairs a giver with a receiver. Created only by a committed draw.
type Assignment struct {
	ID                    string    `json:"id"`
	GroupID               string    `json:"group_id"`
	GiverParticipantID    string    `json:"giver_participant_id"`
	ReceiverParticipantID string    `json:"receiver_participant_id"`
	CreatedAt             time.Time `json:"created_at"`
}

// AssignmentRepository is read-only; assignments are written by DrawStore.CommitDraw.
type AssignmentRepository interface {
	GetByGiver(ctx context.Context, groupID, giverID string) (*Assignment, error)
}

// ParticipantResult is what a single participant may see after the draw: their own receiver.
// swagger:model ParticipantResult
type ParticipantResult struct {
	GroupID       string     `json:"group_id"`
	ParticipantID string     `json:"participant_id"`
	ReceiverID    string     `json:"receiver_id"`
	ReceiverName  string     `json:"receiver_name"`
	DrawnAt       *time.Time `json:"drawn_at"`
}

// ResultViewer identifies who asks for a result: an authenticated user or a participant access
// token. At least one field is set.
type ResultViewer struct {
	UserID      string
	AccessToken string
}

// ResultService answers "whom do I give to" for one participant at a time.
type ResultService interface {
	GetResult(ctx context.Context, groupID, participantID string, viewer ResultViewer) (*ParticipantResult, error)
}
