package draw

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"

	"secretsanta/internal/domain"
)

// Default budgets for Assign.
const (
	DefaultMaxRandomAttempts = 500
	DefaultMaxSearchSteps    = 1_000_000
)

// ErrSearchExhausted is returned when both phases ran out of budget. On a graph that passed
// CheckFeasibility this is a bug, not a user error.
var ErrSearchExhausted = errors.New("draw: search budget exhausted")

// Options bounds the work Assign may do. Values are used as given; start from DefaultOptions.
type Options struct {
	// MaxRandomAttempts is the number of uniform permutations tried before searching.
	MaxRandomAttempts int
	// MaxSearchSteps caps the receiver candidates probed by the search phase.
	MaxSearchSteps int
}

// DefaultOptions returns the production budgets.
func DefaultOptions() Options {
	return Options{MaxRandomAttempts: DefaultMaxRandomAttempts, MaxSearchSteps: DefaultMaxSearchSteps}
}

// Phase names the strategy that produced an assignment.
type Phase string

const (
	PhaseRandom Phase = "random"
	PhaseSearch Phase = "search"
)

// Pair is one giver -> receiver edge of an assignment.
type Pair struct {
	GiverID    string
	ReceiverID string
}

// Result is a complete assignment plus how it was found.
type Result struct {
	Pairs    []Pair
	Phase    Phase
	Attempts int
	Steps    int
}

// NewRand returns a generator seeded from crypto/rand, so draws cannot be predicted from the
// time or process state.
func NewRand() (*rand.Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}

// Assign returns one valid assignment for g: every participant gives exactly once and receives
// exactly once, nobody draws themselves and no forbidden pair is used.
//
// It first samples uniform random permutations, which yields an exactly uniform result when one
// is accepted. If that budget runs out it falls back to a randomized search that visits givers
// and candidate receivers in random order. The search keeps a perfect matching of the
// still-unassigned participants and skips any candidate that would leave them unmatchable, so it
// never enters a dead end and always completes on a feasible graph.
func Assign(g *Graph, rng *rand.Rand, opts Options) (*Result, error) {
	n := g.Len()
	if n == 0 {
		return nil, domain.NewDrawError(domain.ErrNoValidAssignment, "there is nobody to draw", "")
	}

	perm := make([]int, n)
	for attempt := 1; attempt <= opts.MaxRandomAttempts; attempt++ {
		for i := range perm {
			perm[i] = i
		}
		rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if validPermutation(g, perm) {
			return &Result{Pairs: pairsOf(g, perm), Phase: PhaseRandom, Attempts: attempt}, nil
		}
	}

	receivers, steps, err := search(g, rng, opts.MaxSearchSteps)
	if err != nil {
		return nil, err
	}
	return &Result{Pairs: pairsOf(g, receivers), Phase: PhaseSearch, Attempts: opts.MaxRandomAttempts, Steps: steps}, nil
}

func validPermutation(g *Graph, receivers []int) bool {
	for giver, receiver := range receivers {
		if !g.Allowed(giver, receiver) {
			return false
		}
	}
	return true
}

func pairsOf(g *Graph, receivers []int) []Pair {
	pairs := make([]Pair, len(receivers))
	for giver, receiver := range receivers {
		pairs[giver] = Pair{GiverID: g.ID(giver), ReceiverID: g.ID(receiver)}
	}
	return pairs
}

// search assigns givers one by one in random order. Before committing giver u to receiver v it
// repairs the maintained perfect matching of the remaining participants; if no repair exists the
// candidate is discarded.
func search(g *Graph, rng *rand.Rand, maxSteps int) ([]int, int, error) {
	n := g.Len()
	adj := g.adjacency()
	m := maxMatching(adj, n)
	if m.size < n {
		return nil, 0, domain.NewDrawError(domain.ErrNoValidAssignment, "no valid assignment exists for this group",
			fmt.Sprintf("only %d of %d participants can be matched", m.size, n))
	}

	s := &repairer{
		adj:      adj,
		m:        m,
		removedG: make([]bool, n),
		removedR: make([]bool, n),
		seen:     make([]int, n),
	}
	steps := 0
	for _, u := range rng.Perm(n) {
		candidates := make([]int, 0, len(adj[u]))
		for _, v := range adj[u] {
			if !s.removedR[v] {
				candidates = append(candidates, v)
			}
		}
		rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

		placed := false
		for _, v := range candidates {
			steps++
			if steps > maxSteps {
				return nil, steps, ErrSearchExhausted
			}
			if s.fix(u, v) {
				placed = true
				break
			}
		}
		if !placed {
			// The matched receiver of u is always a candidate that fixes.
			return nil, steps, fmt.Errorf("draw: giver %s left without a receiver: %w", g.ID(u), ErrSearchExhausted)
		}
	}
	return m.giverTo, steps, nil
}

type repairer struct {
	adj      [][]int
	m        *matching
	removedG []bool
	removedR []bool
	seen     []int
	stamp    int
}

// fix commits u -> v if the participants still unassigned afterwards can be perfectly matched.
func (s *repairer) fix(u, v int) bool {
	prev := s.m.giverTo[u]
	if prev == v {
		s.removedG[u], s.removedR[v] = true, true
		return true
	}

	// v's current giver w loses v and must reach the receiver u gives up.
	w := s.m.receiverOf[v]
	s.removedG[u], s.removedR[v] = true, true
	s.m.giverTo[u], s.m.receiverOf[prev] = unmatched, unmatched
	s.m.giverTo[w], s.m.receiverOf[v] = unmatched, unmatched

	s.stamp++
	if s.augment(w) {
		s.m.link(u, v)
		return true
	}

	s.removedG[u], s.removedR[v] = false, false
	s.m.link(u, prev)
	s.m.link(w, v)
	return false
}

func (s *repairer) augment(x int) bool {
	for _, y := range s.adj[x] {
		if s.removedR[y] || s.seen[y] == s.stamp {
			continue
		}
		s.seen[y] = s.stamp
		if z := s.m.receiverOf[y]; z == unmatched || s.augment(z) {
			s.m.link(x, y)
			return true
		}
	}
	return false
}
