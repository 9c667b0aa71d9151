package draw

import (
	"errors"
	"math/rand/v2"

	"secretsanta/internal/domain"
)

// Engine runs the validate and draw pipelines over a participant/exclusion snapshot.
// It is safe for concurrent use.
type Engine struct {
	opts    Options
	newRand func() (*rand.Rand, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRandSource replaces the crypto-seeded generator, e.g. for reproducible tests.
func WithRandSource(newRand func() (*rand.Rand, error)) EngineOption {
	return func(e *Engine) { e.newRand = newRand }
}

// NewEngine returns an Engine with the given budgets.
func NewEngine(opts Options, options ...EngineOption) *Engine {
	e := &Engine{opts: opts, newRand: NewRand}
	for _, o := range options {
		o(e)
	}
	return e
}

// Validate reports whether a draw over the snapshot would succeed, without drawing.
func (e *Engine) Validate(participants []*domain.Participant, rules []*domain.ExclusionRule) *domain.DrawValidation {
	g, err := NewGraph(participants, rules)
	if err != nil {
		var de *domain.DrawError
		errors.As(err, &de)
		return &domain.DrawValidation{Valid: false, Code: de.Kind.Code, Message: de.Message, Details: de.Details}
	}
	return CheckFeasibility(g).Validation()
}

// Draw checks feasibility and returns one random valid assignment. Insufficient or infeasible
// snapshots fail with the same *domain.DrawError that Validate describes. Budget exhaustion on a
// feasible snapshot is reported as domain.ErrDrawInternal.
func (e *Engine) Draw(participants []*domain.Participant, rules []*domain.ExclusionRule) (*Result, error) {
	g, err := NewGraph(participants, rules)
	if err != nil {
		return nil, err
	}
	if err := CheckFeasibility(g).Err(); err != nil {
		return nil, err
	}
	rng, err := e.newRand()
	if err != nil {
		return nil, domain.NewDrawError(domain.ErrDrawInternal, "could not seed the draw", err.Error())
	}
	res, err := Assign(g, rng, e.opts)
	if errors.Is(err, ErrSearchExhausted) {
		return nil, domain.NewDrawError(domain.ErrDrawInternal, "the draw could not complete", err.Error())
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
