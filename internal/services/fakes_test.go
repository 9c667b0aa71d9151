package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"secretsanta/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testOwner = "owner-1"
	testGroup = "g1"
)

// fakeDB is the shared in-memory state behind the fake repositories. CommitDraw holds mu for
// the whole call, like the row lock held by the real transaction.
type fakeDB struct {
	mu           sync.Mutex
	groups       map[string]*domain.Group
	participants map[string][]*domain.Participant
	exclusions   map[string][]*domain.ExclusionRule
	assignments  map[string][]*domain.Assignment
	nextID       int
	commits      int
	insertErr    error // if set, CommitDraw fails after the draw func ran
	err          error // if set, every read fails
}

// newFakeDB returns one undrawn group owned by testOwner with participants p1..pN named after
// names, linked to users u1..uN and with an email each.
func newFakeDB(names ...string) *fakeDB {
	db := &fakeDB{
		groups:       map[string]*domain.Group{},
		participants: map[string][]*domain.Participant{},
		exclusions:   map[string][]*domain.ExclusionRule{},
		assignments:  map[string][]*domain.Assignment{},
	}
	db.groups[testGroup] = &domain.Group{ID: testGroup, Name: "Office", OwnerID: testOwner}
	for i, name := range names {
		userID := fmt.Sprintf("u%d", i+1)
		email := fmt.Sprintf("%s@example.com", name)
		db.participants[testGroup] = append(db.participants[testGroup], &domain.Participant{
			ID:      fmt.Sprintf("p%d", i+1),
			GroupID: testGroup,
			UserID:  &userID,
			Name:    name,
			Email:   &email,
		})
	}
	return db
}

func (db *fakeDB) exclude(blocker, blocked string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	db.exclusions[testGroup] = append(db.exclusions[testGroup], &domain.ExclusionRule{
		ID:                   fmt.Sprintf("x%d", db.nextID),
		GroupID:              testGroup,
		BlockerParticipantID: blocker,
		BlockedParticipantID: blocked,
		Origin:               domain.ExclusionOriginUser,
	})
}

func (db *fakeDB) participant(id string) *domain.Participant {
	for _, p := range db.participants[testGroup] {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (db *fakeDB) receiverOf(giver string) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, a := range db.assignments[testGroup] {
		if a.GiverParticipantID == giver {
			return a.ReceiverParticipantID
		}
	}
	return ""
}

func (db *fakeDB) group() domain.Group {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.groups[testGroup]
}

func (db *fakeDB) snapshotParticipants(groupID string) []*domain.Participant {
	out := make([]*domain.Participant, 0, len(db.participants[groupID]))
	for _, p := range db.participants[groupID] {
		c := *p
		out = append(out, &c)
	}
	return out
}

func (db *fakeDB) snapshotExclusions(groupID string) []*domain.ExclusionRule {
	out := make([]*domain.ExclusionRule, 0, len(db.exclusions[groupID]))
	for _, e := range db.exclusions[groupID] {
		c := *e
		out = append(out, &c)
	}
	return out
}

type fakeGroupRepo struct{ db *fakeDB }

func (r *fakeGroupRepo) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.err != nil {
		return nil, r.db.err
	}
	g, ok := r.db.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *g
	return &c, nil
}

type fakeParticipantRepo struct{ db *fakeDB }

func (r *fakeParticipantRepo) GetByID(ctx context.Context, groupID, id string) (*domain.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.participants[groupID] {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeParticipantRepo) ListByGroupID(ctx context.Context, groupID string) ([]*domain.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.err != nil {
		return nil, r.db.err
	}
	return r.db.snapshotParticipants(groupID), nil
}

func (r *fakeParticipantRepo) SetElf(ctx context.Context, groupID, participantID string, elfForID *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.groups[groupID].IsDrawn {
		return domain.ErrAlreadyDrawn
	}
	p := r.db.participant(participantID)
	if p == nil {
		return domain.ErrNotFound
	}
	p.ElfForParticipantID = elfForID
	kept := r.db.exclusions[groupID][:0]
	for _, e := range r.db.exclusions[groupID] {
		if !(e.Origin == domain.ExclusionOriginElf && e.BlockedParticipantID == participantID) {
			kept = append(kept, e)
		}
	}
	r.db.exclusions[groupID] = kept
	if elfForID != nil {
		r.db.nextID++
		rule := domain.ElfExclusion(groupID, participantID, *elfForID, time.Now())
		rule.ID = fmt.Sprintf("x%d", r.db.nextID)
		r.db.exclusions[groupID] = append(r.db.exclusions[groupID], rule)
	}
	return nil
}

func (r *fakeParticipantRepo) SetAccessTokenHash(ctx context.Context, participantID, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p := r.db.participant(participantID)
	if p == nil {
		return domain.ErrNotFound
	}
	p.AccessTokenHash = &hash
	return nil
}

type fakeExclusionRepo struct{ db *fakeDB }

func (r *fakeExclusionRepo) Create(ctx context.Context, rules ...*domain.ExclusionRule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, rule := range rules {
		for _, e := range r.db.exclusions[rule.GroupID] {
			if e.BlockerParticipantID == rule.BlockerParticipantID && e.BlockedParticipantID == rule.BlockedParticipantID {
				return domain.ErrDuplicateExclusion
			}
		}
	}
	for _, rule := range rules {
		r.db.nextID++
		rule.ID = fmt.Sprintf("x%d", r.db.nextID)
		r.db.exclusions[rule.GroupID] = append(r.db.exclusions[rule.GroupID], rule)
	}
	return nil
}

func (r *fakeExclusionRepo) GetByID(ctx context.Context, groupID, id string) (*domain.ExclusionRule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.exclusions[groupID] {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeExclusionRepo) ListByGroupID(ctx context.Context, groupID string) ([]*domain.ExclusionRule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.err != nil {
		return nil, r.db.err
	}
	return r.db.snapshotExclusions(groupID), nil
}

func (r *fakeExclusionRepo) ListByGroupIDPaged(ctx context.Context, groupID string, params domain.PaginationParams) ([]*domain.ExclusionRule, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.db.snapshotExclusions(groupID)
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (r *fakeExclusionRepo) Delete(ctx context.Context, groupID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rules := r.db.exclusions[groupID]
	for i, e := range rules {
		if e.ID != id {
			continue
		}
		if e.Origin == domain.ExclusionOriginElf {
			return domain.ErrProtectedExclusion
		}
		r.db.exclusions[groupID] = append(rules[:i], rules[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

type fakeAssignmentRepo struct{ db *fakeDB }

func (r *fakeAssignmentRepo) GetByGiver(ctx context.Context, groupID, giverID string) (*domain.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.assignments[groupID] {
		if a.GiverParticipantID == giverID {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeDrawStore struct{ db *fakeDB }

func (s *fakeDrawStore) CommitDraw(ctx context.Context, groupID string, drawnAt time.Time, draw domain.DrawFunc) ([]*domain.Assignment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[groupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if g.IsDrawn {
		return nil, domain.NewDrawError(domain.ErrAlreadyDrawn, "this group has already been drawn", "")
	}
	gc := *g
	assignments, err := draw(&domain.DrawSnapshot{
		Group:        &gc,
		Participants: s.db.snapshotParticipants(groupID),
		Exclusions:   s.db.snapshotExclusions(groupID),
	})
	if err != nil {
		return nil, err
	}
	if s.db.insertErr != nil {
		return nil, s.db.insertErr
	}
	for _, a := range assignments {
		s.db.nextID++
		a.ID = fmt.Sprintf("a%d", s.db.nextID)
		a.GroupID = groupID
		a.CreatedAt = drawnAt
	}
	s.db.assignments[groupID] = assignments
	g.IsDrawn = true
	g.DrawnAt = &drawnAt
	s.db.commits++
	return assignments, nil
}

type noopLocker struct{}

func (noopLocker) Lock(ctx context.Context, groupID string) (func(), error) {
	return func() {}, nil
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(ctx context.Context, groupID string) (func(), error) {
	return nil, l.err
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.DrawCompletedEmailData
	err  error
}

func (f *fakeEmailService) SendDrawCompleted(ctx context.Context, data *domain.DrawCompletedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// fakeHasher treats "hash:" + token as the hash of token.
type fakeHasher struct{}

func (fakeHasher) Generate() (string, error)         { return "token", nil }
func (fakeHasher) Hash(token string) (string, error) { return "hash:" + token, nil }
func (fakeHasher) Compare(hash, token string) error {
	if hash != "hash:"+token {
		return errors.New("mismatch")
	}
	return nil
}
