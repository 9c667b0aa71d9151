package draw

import (
	"fmt"
	"strings"

	"secretsanta/internal/domain"
)

// MinParticipants is a product rule, not a property of the matching: groups smaller than this
// are never drawn even when a derangement exists.
const MinParticipants = 3

// Feasibility is the outcome of CheckFeasibility. Kind is nil when a draw can succeed.
type Feasibility struct {
	Feasible  bool
	Kind      *domain.DrawErrorKind
	Matched   int
	Unmatched []string
	Violation *HallViolation
	Reason    string
	Details   string
}

// HallViolation is a set of givers whose permissible receivers, taken together, are fewer than
// the givers themselves. Its existence proves no valid assignment exists.
type HallViolation struct {
	Givers    []string
	Receivers []string
}

// Err returns the feasibility failure as a *domain.DrawError, or nil when feasible.
func (f *Feasibility) Err() error {
	if f.Feasible {
		return nil
	}
	return domain.NewDrawError(f.Kind, f.Reason, f.Details)
}

// Validation converts the outcome to the dry-run response shape.
func (f *Feasibility) Validation() *domain.DrawValidation {
	if f.Feasible {
		return &domain.DrawValidation{Valid: true}
	}
	return &domain.DrawValidation{
		Valid:   false,
		Code:    f.Kind.Code,
		Message: f.Reason,
		Details: f.Details,
	}
}

// CheckFeasibility decides whether the graph admits at least one valid assignment. It runs one
// maximum bipartite matching and is deterministic for a given graph.
func CheckFeasibility(g *Graph) *Feasibility {
	n := g.Len()
	if n < MinParticipants {
		return &Feasibility{
			Kind:    domain.ErrInsufficientParticipants,
			Reason:  fmt.Sprintf("minimum %d participants required", MinParticipants),
			Details: fmt.Sprintf("the group has %d", n),
		}
	}

	adj := g.adjacency()
	m := maxMatching(adj, n)
	if m.size == n {
		return &Feasibility{Feasible: true, Matched: n}
	}

	f := &Feasibility{Kind: domain.ErrInfeasibleConstraints, Matched: m.size}
	first := -1
	for u := 0; u < n; u++ {
		if m.giverTo[u] == unmatched {
			f.Unmatched = append(f.Unmatched, g.ID(u))
			if first == -1 {
				first = u
			}
		}
	}

	givers, receivers := hallViolation(adj, m, first)
	f.Violation = &HallViolation{Givers: idsOf(g, givers), Receivers: idsOf(g, receivers)}
	f.Reason = "The exclusions leave no valid draw: " + describeViolation(g, givers, receivers) + "."
	f.Details = fmt.Sprintf("%d of %d participants can be matched; %d participant(s) share %d possible receiver(s)",
		m.size, n, len(givers), len(receivers))
	return f
}

// hallViolation collects every giver reachable from the free giver start by alternating paths,
// together with the receivers they may draw. In a maximum matching all those receivers are
// matched to givers inside the set, so the set has one more giver than receivers.
func hallViolation(adj [][]int, m *matching, start int) (givers, receivers []int) {
	seenG := make([]bool, len(adj))
	seenR := make([]bool, len(adj))
	seenG[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		givers = append(givers, u)
		for _, v := range adj[u] {
			if seenR[v] {
				continue
			}
			seenR[v] = true
			receivers = append(receivers, v)
			if w := m.receiverOf[v]; w != unmatched && !seenG[w] {
				seenG[w] = true
				queue = append(queue, w)
			}
		}
	}
	return givers, receivers
}

func describeViolation(g *Graph, givers, receivers []int) string {
	if len(receivers) == 0 {
		return joinLabels(g, givers) + " has no one left to draw"
	}
	return joinLabels(g, givers) + " can only draw from " + joinLabels(g, receivers)
}

func joinLabels(g *Graph, idx []int) string {
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = g.Label(j)
	}
	switch len(names) {
	case 0:
		return "nobody"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func idsOf(g *Graph, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.ID(j)
	}
	return out
}

const unmatched = -1

// matching is a bipartite matching between givers and receivers over the same index space.
type matching struct {
	giverTo    []int
	receiverOf []int
	size       int
}

func newMatching(n int) *matching {
	m := &matching{giverTo: make([]int, n), receiverOf: make([]int, n)}
	for i := 0; i < n; i++ {
		m.giverTo[i] = unmatched
		m.receiverOf[i] = unmatched
	}
	return m
}

func (m *matching) link(giver, receiver int) {
	m.giverTo[giver] = receiver
	m.receiverOf[receiver] = giver
}

// maxMatching runs Hopcroft–Karp over adj (giver -> permissible receivers).
func maxMatching(adj [][]int, n int) *matching {
	hk := &hopcroftKarp{adj: adj, m: newMatching(n), dist: make([]int, n)}
	for hk.layer() {
		for u := 0; u < n; u++ {
			if hk.m.giverTo[u] == unmatched && hk.augment(u) {
				hk.m.size++
			}
		}
	}
	return hk.m
}

type hopcroftKarp struct {
	adj  [][]int
	m    *matching
	dist []int
}

const infinity = int(^uint(0) >> 1)

// layer builds BFS layers from the free givers and reports whether a free receiver is reachable.
func (hk *hopcroftKarp) layer() bool {
	queue := make([]int, 0, len(hk.adj))
	for u := range hk.adj {
		if hk.m.giverTo[u] == unmatched {
			hk.dist[u] = 0
			queue = append(queue, u)
		} else {
			hk.dist[u] = infinity
		}
	}
	found := false
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range hk.adj[u] {
			w := hk.m.receiverOf[v]
			if w == unmatched {
				found = true
			} else if hk.dist[w] == infinity {
				hk.dist[w] = hk.dist[u] + 1
				queue = append(queue, w)
			}
		}
	}
	return found
}

func (hk *hopcroftKarp) augment(u int) bool {
	for _, v := range hk.adj[u] {
		w := hk.m.receiverOf[v]
		if w == unmatched || (hk.dist[w] == hk.dist[u]+1 && hk.augment(w)) {
			hk.m.link(u, v)
			return true
		}
	}
	hk.dist[u] = infinity
	return false
}
