package domain

import (
	"context"
	"errors"
	"time"
)

// DrawErrorKind is a draw failure category. Its Code is the value exposed to API clients.
type DrawErrorKind struct {
	Code    string
	message string
}

func (k *DrawErrorKind) Error() string { return k.message }

// Draw failure kinds. Compare with errors.Is.
var (
	ErrInsufficientParticipants = &DrawErrorKind{Code: "INSUFFICIENT_PARTICIPANTS", message: "not enough participants"}
	ErrInfeasibleConstraints    = &DrawErrorKind{Code: "INFEASIBLE_CONSTRAINTS", message: "no valid assignment satisfies the exclusions"}
	ErrAlreadyDrawn             = &DrawErrorKind{Code: "ALREADY_DRAWN", message: "group has already been drawn"}
	ErrNoValidAssignment        = &DrawErrorKind{Code: "NO_VALID_ASSIGNMENT", message: "no valid assignment found"}
	ErrInvalidGraph             = &DrawErrorKind{Code: "INVALID_GRAPH", message: "exclusion graph is invalid"}
	ErrDrawInternal             = &DrawErrorKind{Code: "INTERNAL_ERROR", message: "internal draw error"}
)

// DrawError is a draw failure with a user-facing message and optional details.
type DrawError struct {
	Kind    *DrawErrorKind
	Message string
	Details string
}

// NewDrawError returns a DrawError of the given kind.
func NewDrawError(kind *DrawErrorKind, message, details string) *DrawError {
	return &DrawError{Kind: kind, Message: message, Details: details}
}

func (e *DrawError) Error() string {
	if e.Details != "" {
		return e.Kind.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Kind.Code + ": " + e.Message
}

func (e *DrawError) Unwrap() error { return e.Kind }

// DrawErrorCode returns the API code of err when it is a draw failure, or "" otherwise.
func DrawErrorCode(err error) string {
	var kind *DrawErrorKind
	if errors.As(err, &kind) {
		return kind.Code
	}
	return ""
}

// DrawValidation is the dry-run outcome shown before the draw button is enabled.
// swagger:model DrawValidation
type DrawValidation struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// DrawOutcome is returned by a committed draw. It never contains the mapping itself.
// swagger:model DrawOutcome
type DrawOutcome struct {
	GroupID     string    `json:"group_id"`
	IsDrawn     bool      `json:"is_drawn"`
	DrawnAt     time.Time `json:"drawn_at"`
	Assignments int       `json:"assignments"`
}

// DrawSnapshot is the state read inside the commit transaction, after the group row is locked.
type DrawSnapshot struct {
	Group        *Group
	Participants []*Participant
	Exclusions   []*ExclusionRule
}

// DrawFunc computes the assignments for a locked snapshot. Returning an error aborts the commit.
type DrawFunc func(snapshot *DrawSnapshot) ([]*Assignment, error)

// DrawStore is the only writer of assignments and group draw state.
type DrawStore interface {
	// CommitDraw locks the group, loads a snapshot, calls draw, and persists the returned
	// assignments together with is_drawn=true and drawn_at. All of it commits or none of it does.
	CommitDraw(ctx context.Context, groupID string, drawnAt time.Time, draw DrawFunc) ([]*Assignment, error)
}

// GroupLocker serializes draw attempts for one group. Lock blocks until the lock is held or ctx
// is done; the returned func releases it.
type GroupLocker interface {
	Lock(ctx context.Context, groupID string) (unlock func(), err error)
}

// DrawService is the draw coordinator.
type DrawService interface {
	Validate(ctx context.Context, groupID, callerID string) (*DrawValidation, error)
	Execute(ctx context.Context, groupID, callerID string) (*DrawOutcome, error)
	Status(ctx context.Context, groupID, callerID string) (*GroupDrawState, error)
}
