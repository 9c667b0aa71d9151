package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"secretsanta/internal/domain"
	"secretsanta/internal/draw"
)

type drawService struct {
	groupRepo       domain.GroupRepository
	participantRepo domain.ParticipantRepository
	exclusionRepo   domain.ExclusionRepository
	store           domain.DrawStore
	locker          domain.GroupLocker
	engine          *draw.Engine
	emailService    domain.EmailService
	logger          *slog.Logger
	contextTimeout  time.Duration
	baseURL         string
	now             func() time.Time
}

// NewDrawService returns the draw coordinator. emailService may be nil to skip notifications.
func NewDrawService(groupRepo domain.GroupRepository,
	participantRepo domain.ParticipantRepository,
	exclusionRepo domain.ExclusionRepository,
	store domain.DrawStore,
	locker domain.GroupLocker,
	engine *draw.Engine,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
	baseURL string,
) domain.DrawService {
	return &drawService{
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		exclusionRepo:   exclusionRepo,
		store:           store,
		locker:          locker,
		engine:          engine,
		emailService:    emailService,
		logger:          logger,
		contextTimeout:  timeout,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		now:             time.Now,
	}
}

// ownedGroup loads the group and checks that callerID owns it.
func ownedGroup(ctx context.Context, repo domain.GroupRepository, groupID, callerID string) (*domain.Group, error) {
	group, err := repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return group, nil
}

func (s *drawService) Validate(ctx context.Context, groupID, callerID string) (*domain.DrawValidation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := ownedGroup(ctx, s.groupRepo, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if group.IsDrawn {
		return &domain.DrawValidation{
			Valid:   false,
			Code:    domain.ErrAlreadyDrawn.Code,
			Message: "this group has already been drawn",
			Details: "validation does not apply after the draw",
		}, nil
	}

	participants, err := s.participantRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	exclusions, err := s.exclusionRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list exclusions: %w", err)
	}
	return s.engine.Validate(participants, exclusions), nil
}

func (s *drawService) Execute(ctx context.Context, groupID, callerID string) (*domain.DrawOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := ownedGroup(ctx, s.groupRepo, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if group.IsDrawn {
		return nil, domain.NewDrawError(domain.ErrAlreadyDrawn, "this group has already been drawn", "")
	}

	unlock, err := s.locker.Lock(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("acquire draw lock: %w", err)
	}

	var (
		result   *draw.Result
		snapshot *domain.DrawSnapshot
	)
	drawnAt := s.now().UTC()
	assignments, err := s.store.CommitDraw(ctx, groupID, drawnAt, func(snap *domain.DrawSnapshot) ([]*domain.Assignment, error) {
		res, err := s.engine.Draw(snap.Participants, snap.Exclusions)
		if err != nil {
			return nil, err
		}
		result, snapshot = res, snap
		out := make([]*domain.Assignment, len(res.Pairs))
		for i, p := range res.Pairs {
			out[i] = &domain.Assignment{GiverParticipantID: p.GiverID, ReceiverParticipantID: p.ReceiverID}
		}
		return out, nil
	})
	unlock()
	if err != nil {
		if domain.DrawErrorCode(err) != "" || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("commit draw: %w", err)
	}

	s.logger.InfoContext(ctx, "draw committed",
		"group_id", groupID,
		"participants", len(assignments),
		"phase", result.Phase,
		"attempts", result.Attempts,
		"steps", result.Steps,
	)
	s.notify(ctx, snapshot)

	return &domain.DrawOutcome{
		GroupID:     groupID,
		IsDrawn:     true,
		DrawnAt:     drawnAt,
		Assignments: len(assignments),
	}, nil
}

// notify emails every participant with an address. Failures are logged and never undo the draw.
func (s *drawService) notify(ctx context.Context, snap *domain.DrawSnapshot) {
	if s.emailService == nil || snap == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()
	for _, p := range snap.Participants {
		if p.Email == nil || *p.Email == "" {
			continue
		}
		err := s.emailService.SendDrawCompleted(ctx, &domain.DrawCompletedEmailData{
			Email:     *p.Email,
			Name:      p.Name,
			GroupName: snap.Group.Name,
			ResultURL: fmt.Sprintf("%s/groups/%s/participants/%s/result", s.baseURL, snap.Group.ID, p.ID),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "draw notification failed", "group_id", snap.Group.ID, "participant_id", p.ID, "err", err)
		}
	}
}

// Status is visible to the owner and to participants linked to the caller.
func (s *drawService) Status(ctx context.Context, groupID, callerID string) (*domain.GroupDrawState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	if group.OwnerID != callerID {
		participants, err := s.participantRepo.ListByGroupID(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("list participants: %w", err)
		}
		if findByUser(participants, callerID) == nil {
			return nil, domain.ErrForbidden
		}
	}
	state := group.DrawState()
	return &state, nil
}

func findByUser(participants []*domain.Participant, userID string) *domain.Participant {
	for _, p := range participants {
		if p.UserID != nil && *p.UserID == userID {
			return p
		}
	}
	return nil
}
