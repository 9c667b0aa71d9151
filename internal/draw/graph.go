// Package draw implements the Secret Santa draw engine: the forbidden-pairs graph, the
// feasibility check and the random assigner. It is pure: no I/O, no clocks, and the only
// source of randomness is the *rand.Rand passed in by the caller.
package draw

import (
	"fmt"

	"secretsanta/internal/domain"
)

// Graph is the directed forbidden-pairs relation over the participants of one group.
// Participants are indexed 0..n-1 in input order; all lookups are O(1).
type Graph struct {
	ids       []string
	labels    []string
	index     map[string]int
	forbidden [][]bool
	edges     int
}

// NewGraph builds the graph from participants and rules. Elf links on participants are
// re-derived into helped-may-not-draw-elf edges and merged with the stored rules, so an elf
// relationship yields one edge whether or not its rule was passed in.
func NewGraph(participants []*domain.Participant, rules []*domain.ExclusionRule) (*Graph, error) {
	n := len(participants)
	g := &Graph{
		ids:       make([]string, n),
		labels:    make([]string, n),
		index:     make(map[string]int, n),
		forbidden: make([][]bool, n),
	}
	for i, p := range participants {
		if p == nil || p.ID == "" {
			return nil, invalidGraph("participant at position %d has no id", i)
		}
		if _, dup := g.index[p.ID]; dup {
			return nil, invalidGraph("participant %s is listed twice", p.ID)
		}
		g.ids[i] = p.ID
		g.labels[i] = p.Name
		if g.labels[i] == "" {
			g.labels[i] = p.ID
		}
		g.index[p.ID] = i
		g.forbidden[i] = make([]bool, n)
	}

	for _, r := range rules {
		blocker, ok := g.index[r.BlockerParticipantID]
		if !ok {
			return nil, invalidGraph("exclusion %s references unknown blocker %s", r.ID, r.BlockerParticipantID)
		}
		blocked, ok := g.index[r.BlockedParticipantID]
		if !ok {
			return nil, invalidGraph("exclusion %s references unknown blocked participant %s", r.ID, r.BlockedParticipantID)
		}
		if blocker == blocked {
			return nil, invalidGraph("exclusion %s blocks participant %s from itself", r.ID, r.BlockerParticipantID)
		}
		g.forbid(blocker, blocked)
	}

	for elf, p := range participants {
		if p.ElfForParticipantID == nil {
			continue
		}
		helped, ok := g.index[*p.ElfForParticipantID]
		if !ok {
			return nil, invalidGraph("participant %s is elf for unknown participant %s", p.ID, *p.ElfForParticipantID)
		}
		if helped == elf {
			return nil, invalidGraph("participant %s is elf for itself", p.ID)
		}
		g.forbid(helped, elf)
	}
	return g, nil
}

func invalidGraph(format string, args ...any) error {
	return domain.NewDrawError(domain.ErrInvalidGraph, "the exclusion rules reference participants outside the group", fmt.Sprintf(format, args...))
}

func (g *Graph) forbid(giver, receiver int) {
	if !g.forbidden[giver][receiver] {
		g.forbidden[giver][receiver] = true
		g.edges++
	}
}

// Len returns the number of participants.
func (g *Graph) Len() int { return len(g.ids) }

// Edges returns the number of distinct forbidden pairs.
func (g *Graph) Edges() int { return g.edges }

// ID returns the participant id at index i.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Label returns the display name at index i.
func (g *Graph) Label(i int) string { return g.labels[i] }

// Forbidden reports whether giver must not draw receiver. Unknown ids are never forbidden.
func (g *Graph) Forbidden(giver, receiver string) bool {
	gi, ok := g.index[giver]
	if !ok {
		return false
	}
	ri, ok := g.index[receiver]
	if !ok {
		return false
	}
	return g.forbidden[gi][ri]
}

// Allowed reports whether giver i may draw receiver j: not itself and not forbidden.
func (g *Graph) Allowed(i, j int) bool {
	return i != j && !g.forbidden[i][j]
}

// ForbiddenReceivers returns the ids the giver must not draw, in participant order.
func (g *Graph) ForbiddenReceivers(giver string) []string {
	i, ok := g.index[giver]
	if !ok {
		return nil
	}
	var out []string
	for j, f := range g.forbidden[i] {
		if f {
			out = append(out, g.ids[j])
		}
	}
	return out
}

// PermissibleReceivers returns the ids the giver may draw, excluding itself, in participant order.
func (g *Graph) PermissibleReceivers(giver string) []string {
	i, ok := g.index[giver]
	if !ok {
		return nil
	}
	var out []string
	for _, j := range g.permissible(i) {
		out = append(out, g.ids[j])
	}
	return out
}

func (g *Graph) permissible(i int) []int {
	out := make([]int, 0, len(g.ids))
	for j := range g.ids {
		if g.Allowed(i, j) {
			out = append(out, j)
		}
	}
	return out
}

// adjacency returns the permissible receivers of every giver.
func (g *Graph) adjacency() [][]int {
	adj := make([][]int, len(g.ids))
	for i := range g.ids {
		adj[i] = g.permissible(i)
	}
	return adj
}
