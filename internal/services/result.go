package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secretsanta/internal/domain"
)

type resultService struct {
	groupRepo       domain.GroupRepository
	participantRepo domain.ParticipantRepository
	assignmentRepo  domain.AssignmentRepository
	hasher          domain.AccessTokenHasher
	contextTimeout  time.Duration
}

// NewResultService returns the per-participant result lookup.
func NewResultService(groupRepo domain.GroupRepository,
	participantRepo domain.ParticipantRepository,
	assignmentRepo domain.AssignmentRepository,
	hasher domain.AccessTokenHasher,
	timeout time.Duration,
) domain.ResultService {
	return &resultService{
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		assignmentRepo:  assignmentRepo,
		hasher:          hasher,
		contextTimeout:  timeout,
	}
}

// GetResult returns the receiver of one participant. The viewer must be the participant's
// user, the user of that participant's elf, or hold the participant's access token.
func (s *resultService) GetResult(ctx context.Context, groupID, participantID string, viewer domain.ResultViewer) (*domain.ParticipantResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	participant, err := s.participantRepo.GetByID(ctx, groupID, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if err := s.authorize(ctx, participant, viewer); err != nil {
		return nil, err
	}
	if !group.IsDrawn {
		return nil, domain.ErrNotDrawn
	}

	assignment, err := s.assignmentRepo.GetByGiver(ctx, groupID, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("drawn group %s has no assignment for %s", groupID, participantID)
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	receiver, err := s.participantRepo.GetByID(ctx, groupID, assignment.ReceiverParticipantID)
	if err != nil {
		return nil, fmt.Errorf("get receiver: %w", err)
	}
	return &domain.ParticipantResult{
		GroupID:       groupID,
		ParticipantID: participantID,
		ReceiverID:    receiver.ID,
		ReceiverName:  receiver.Name,
		DrawnAt:       group.DrawnAt,
	}, nil
}

func (s *resultService) authorize(ctx context.Context, participant *domain.Participant, viewer domain.ResultViewer) error {
	if viewer.UserID != "" {
		if participant.UserID != nil && *participant.UserID == viewer.UserID {
			return nil
		}
		participants, err := s.participantRepo.ListByGroupID(ctx, participant.GroupID)
		if err != nil {
			return fmt.Errorf("list participants: %w", err)
		}
		for _, p := range participants {
			if p.UserID != nil && *p.UserID == viewer.UserID && p.IsElfFor(participant.ID) {
				return nil
			}
		}
	}
	if viewer.AccessToken != "" && participant.AccessTokenHash != nil {
		if s.hasher.Compare(*participant.AccessTokenHash, viewer.AccessToken) == nil {
			return nil
		}
	}
	return domain.ErrForbidden
}
