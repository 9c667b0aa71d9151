package domain

import (
	"context"
	"time"
)

// ExclusionOrigin tells who owns an exclusion rule.
type ExclusionOrigin string

const (
	// ExclusionOriginUser rules are created and deleted by the group owner.
	ExclusionOriginUser ExclusionOrigin = "user"
	// ExclusionOriginElf rules are derived from elf relationships and maintained by the system.
	ExclusionOriginElf ExclusionOrigin = "elf"
)

// ExclusionRule forbids Blocker from drawing Blocked. Rules are directed; a reverse pair is a
// separate rule.
// swagger:model ExclusionRule
type ExclusionRule struct {
	ID                   string          `json:"id"`
	GroupID              string          `json:"group_id"`
	BlockerParticipantID string          `json:"blocker_participant_id"`
	BlockedParticipantID string          `json:"blocked_participant_id"`
	Origin               ExclusionOrigin `json:"origin"`
	CreatedAt            time.Time       `json:"created_at"`
}

// NewExclusionRule returns a user-owned rule. ID is set by the repository on create.
func NewExclusionRule(groupID, blockerID, blockedID string, createdAt time.Time) *ExclusionRule {
	return &ExclusionRule{
		GroupID:              groupID,
		BlockerParticipantID: blockerID,
		BlockedParticipantID: blockedID,
		Origin:               ExclusionOriginUser,
		CreatedAt:            createdAt,
	}
}

// ElfExclusion returns the rule implied by elf being elf-for helped: helped must not draw elf.
func ElfExclusion(groupID, elfID, helpedID string, createdAt time.Time) *ExclusionRule {
	return &ExclusionRule{
		GroupID:              groupID,
		BlockerParticipantID: helpedID,
		BlockedParticipantID: elfID,
		Origin:               ExclusionOriginElf,
		CreatedAt:            createdAt,
	}
}

// ExclusionRepository defines storage operations for exclusion rules.
type ExclusionRepository interface {
	// Create inserts all rules in one transaction and sets their IDs.
	Create(ctx context.Context, rules ...*ExclusionRule) error
	GetByID(ctx context.Context, groupID, id string) (*ExclusionRule, error)
	ListByGroupID(ctx context.Context, groupID string) ([]*ExclusionRule, error)
	ListByGroupIDPaged(ctx context.Context, groupID string, params PaginationParams) ([]*ExclusionRule, int, error)
	Delete(ctx context.Context, groupID, id string) error
}

// ExclusionService is the group owner's interface to exclusions and elf links. It keeps
// elf-derived rules in sync with participant elf state.
type ExclusionService interface {
	List(ctx context.Context, groupID, callerID string, params PaginationParams) ([]*ExclusionRule, int, error)
	Create(ctx context.Context, groupID, callerID, blockerID, blockedID string, bidirectional bool) ([]*ExclusionRule, error)
	Delete(ctx context.Context, groupID, callerID, exclusionID string) error
	SetElf(ctx context.Context, groupID, callerID, participantID string, elfForID *string) (*Participant, error)
}
