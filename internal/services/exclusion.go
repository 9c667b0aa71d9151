package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secretsanta/internal/domain"
)

type exclusionService struct {
	groupRepo       domain.GroupRepository
	participantRepo domain.ParticipantRepository
	exclusionRepo   domain.ExclusionRepository
	contextTimeout  time.Duration
}

// NewExclusionService returns the owner-facing exclusion and elf management service.
func NewExclusionService(groupRepo domain.GroupRepository,
	participantRepo domain.ParticipantRepository,
	exclusionRepo domain.ExclusionRepository,
	timeout time.Duration,
) domain.ExclusionService {
	return &exclusionService{
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		exclusionRepo:   exclusionRepo,
		contextTimeout:  timeout,
	}
}

func (s *exclusionService) List(ctx context.Context, groupID, callerID string, params domain.PaginationParams) ([]*domain.ExclusionRule, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedGroup(ctx, s.groupRepo, groupID, callerID); err != nil {
		return nil, 0, err
	}
	rules, total, err := s.exclusionRepo.ListByGroupIDPaged(ctx, groupID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list exclusions: %w", err)
	}
	return rules, total, nil
}

func (s *exclusionService) Create(ctx context.Context, groupID, callerID, blockerID, blockedID string, bidirectional bool) ([]*domain.ExclusionRule, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := ownedGroup(ctx, s.groupRepo, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if group.IsDrawn {
		return nil, domain.ErrAlreadyDrawn
	}
	if blockerID == blockedID {
		return nil, fmt.Errorf("a participant cannot exclude themselves: %w", domain.ErrInvalidInput)
	}
	for _, id := range []string{blockerID, blockedID} {
		if err := s.requireParticipant(ctx, groupID, id); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	rules := []*domain.ExclusionRule{domain.NewExclusionRule(groupID, blockerID, blockedID, now)}
	if bidirectional {
		rules = append(rules, domain.NewExclusionRule(groupID, blockedID, blockerID, now))
	}
	if err := s.exclusionRepo.Create(ctx, rules...); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create exclusion: %w", err)
	}
	return rules, nil
}

func (s *exclusionService) Delete(ctx context.Context, groupID, callerID, exclusionID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedGroup(ctx, s.groupRepo, groupID, callerID); err != nil {
		return err
	}
	if err := s.exclusionRepo.Delete(ctx, groupID, exclusionID); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("delete exclusion: %w", err)
	}
	return nil
}

// SetElf links participantID as elf for elfForID, or clears the link when elfForID is nil.
// The derived exclusion rule is replaced in the same transaction.
func (s *exclusionService) SetElf(ctx context.Context, groupID, callerID, participantID string, elfForID *string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := ownedGroup(ctx, s.groupRepo, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if group.IsDrawn {
		return nil, domain.ErrAlreadyDrawn
	}
	if err := s.requireParticipant(ctx, groupID, participantID); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if elfForID != nil {
		if *elfForID == participantID {
			return nil, fmt.Errorf("a participant cannot be their own elf: %w", domain.ErrInvalidInput)
		}
		if err := s.requireParticipant(ctx, groupID, *elfForID); err != nil {
			return nil, err
		}
	}

	if err := s.participantRepo.SetElf(ctx, groupID, participantID, elfForID); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("set elf: %w", err)
	}
	p, err := s.participantRepo.GetByID(ctx, groupID, participantID)
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// requireParticipant fails with ErrInvalidInput when id is not a participant of the group.
func (s *exclusionService) requireParticipant(ctx context.Context, groupID, id string) error {
	if _, err := s.participantRepo.GetByID(ctx, groupID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("participant %s is not in this group: %w", id, domain.ErrInvalidInput)
		}
		return fmt.Errorf("get participant: %w", err)
	}
	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrAlreadyDrawn) ||
		errors.Is(err, domain.ErrDuplicateExclusion) ||
		errors.Is(err, domain.ErrProtectedExclusion) ||
		errors.Is(err, domain.ErrInvalidInput)
}
