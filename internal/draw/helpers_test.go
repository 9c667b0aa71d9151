package draw

import (
	"math/rand/v2"
	"strings"

	"secretsanta/internal/domain"
)

// people returns participants with ids "a", "b", ... and the given names.
func people(names ...string) []*domain.Participant {
	out := make([]*domain.Participant, len(names))
	for i, name := range names {
		out[i] = &domain.Participant{ID: string(rune('a' + i)), GroupID: "g1", Name: name}
	}
	return out
}

// rules parses "a>b" as "a must not draw b".
func rules(pairs ...string) []*domain.ExclusionRule {
	out := make([]*domain.ExclusionRule, len(pairs))
	for i, p := range pairs {
		parts := strings.SplitN(p, ">", 2)
		out[i] = &domain.ExclusionRule{
			ID:                   p,
			GroupID:              "g1",
			BlockerParticipantID: parts[0],
			BlockedParticipantID: parts[1],
			Origin:               domain.ExclusionOriginUser,
		}
	}
	return out
}

func elf(p *domain.Participant, helped string) {
	p.ElfForParticipantID = &helped
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*0x9e3779b97f4a7c15+1))
}

func mustGraph(ps []*domain.Participant, rs []*domain.ExclusionRule) *Graph {
	g, err := NewGraph(ps, rs)
	if err != nil {
		panic(err)
	}
	return g
}
