package brackets

import (
	"context"

	"github.com/Dosada05/tt-tournament/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules every round of a single round robin using the circle method.
// With an odd field a phantom entry is added; whoever is drawn against it sits the round out.
// Entry 0 stays fixed, the others rotate one place per round, so every pair meets exactly once.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := validatePlayers(params.PlayerIDs); err != nil {
		return nil, err
	}
	seeder := params.Seeder
	if seeder == nil {
		seeder = NewRandomSeeder(nil)
	}

	n := len(params.PlayerIDs)
	entries, err := seeder.Seed(params.PlayerIDs, n+n%2)
	if err != nil {
		return nil, err
	}

	total := len(entries)
	matches := make([]*BracketMatch, 0, n*(n-1)/2)
	for round := 1; round < total; round++ {
		order := 0
		for i := 0; i < total/2; i++ {
			home, away := entries[i], entries[total-1-i]
			if home == nil || away == nil {
				continue
			}
			order++
			matches = append(matches, &BracketMatch{
				Round:        round,
				OrderInRound: order,
				Phase:        models.PhaseRoundRobin,
				Player1ID:    *home,
				Player2ID:    intPtr(*away),
			})
		}
		entries = rotate(entries)
	}

	return &Bracket{Matches: matches}, nil
}

// rotate keeps entries[0] in place and moves entries[1] to the end.
func rotate(entries []*int) []*int {
	if len(entries) < 3 {
		return entries
	}
	next := make([]*int, 0, len(entries))
	next = append(next, entries[0])
	next = append(next, entries[2:]...)
	next = append(next, entries[1])
	return next
}
