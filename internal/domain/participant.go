package domain

import (
	"context"
	"time"
)

// Participant is a member of a group. UserID is nil for token-based participants.
// ElfForParticipantID is set when this participant secretly helps another one.
// swagger:model Participant
type Participant struct {
	ID                  string    `json:"id"`
	GroupID             string    `json:"group_id"`
	UserID              *string   `json:"user_id"`
	Name                string    `json:"name"`
	Email               *string   `json:"email,omitempty"`
	ElfForParticipantID *string   `json:"elf_for_participant_id"`
	AccessTokenHash     *string   `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
}

// IsElfFor reports whether p is the elf of the participant with the given id.
func (p *Participant) IsElfFor(participantID string) bool {
	return p.ElfForParticipantID != nil && *p.ElfForParticipantID == participantID
}

// ParticipantRepository defines storage operations for participants.
type ParticipantRepository interface {
	GetByID(ctx context.Context, groupID, id string) (*Participant, error)
	ListByGroupID(ctx context.Context, groupID string) ([]*Participant, error)
	// SetElf updates the participant's elf-for link and replaces its elf-derived exclusion
	// in one transaction. A nil elfForID clears the link and removes the rule.
	SetElf(ctx context.Context, groupID, participantID string, elfForID *string) error
	SetAccessTokenHash(ctx context.Context, participantID, hash string) error
}
