package brackets

import (
	"context"
	"math/bits"

	"github.com/Dosada05/tt-tournament/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// BracketSize returns the smallest power of two that holds n players.
func BracketSize(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// GenerateBracket builds round 1 of a knockout draw. Later rounds are created by the
// progression engine as cohorts resolve, so only the first round is returned here.
// A player drawn against an empty slot gets a finished bye match so that the next round
// can be derived purely from the winners of round 1.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := validatePlayers(params.PlayerIDs); err != nil {
		return nil, err
	}
	seeder := params.Seeder
	if seeder == nil {
		seeder = NewRandomSeeder(nil)
	}

	size := BracketSize(len(params.PlayerIDs))
	slots, err := seeder.Seed(params.PlayerIDs, size)
	if err != nil {
		return nil, err
	}

	return &Bracket{Matches: pairSlots(slots, 1, models.PhaseMain)}, nil
}

// pairSlots pairs consecutive slots (0,1), (2,3), ... Two empty slots produce nothing.
func pairSlots(slots []*int, round int, phase string) []*BracketMatch {
	matches := make([]*BracketMatch, 0, len(slots)/2)
	order := 0
	for i := 0; i+1 < len(slots); i += 2 {
		a, b := slots[i], slots[i+1]
		switch {
		case a != nil && b != nil:
			order++
			matches = append(matches, &BracketMatch{
				Round:        round,
				OrderInRound: order,
				Phase:        phase,
				Player1ID:    *a,
				Player2ID:    intPtr(*b),
			})
		case a != nil:
			order++
			matches = append(matches, byeMatch(round, order, phase, *a))
		case b != nil:
			order++
			matches = append(matches, byeMatch(round, order, phase, *b))
		}
	}
	return matches
}
