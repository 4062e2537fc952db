package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
)

var (
	ErrNotEnoughPlayers   = errors.New("not enough players to generate a bracket (minimum 2)")
	ErrDuplicatePlayer    = errors.New("player listed more than once")
	ErrFormatNotSupported = errors.New("tournament format has no bracket generator")
)

// DefaultGroupSize is the target number of players per group in the groups format.
const DefaultGroupSize = 4

type GenerateBracketParams struct {
	Tournament *models.Tournament
	PlayerIDs  []int
	Seeder     Seeder
}

// BracketMatch is a match produced by a generator before it is persisted.
// Player2ID is nil for a bye, in which case Player1ID advances immediately.
type BracketMatch struct {
	Round        int
	OrderInRound int
	Phase        string
	Player1ID    int
	Player2ID    *int
	IsBye        bool
}

type BracketGroup struct {
	Name      string
	PlayerIDs []int
}

// Bracket is the output of a generator: first-round matches, or groups for the groups format.
type Bracket struct {
	Matches []*BracketMatch
	Groups  []*BracketGroup
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error)

	GetName() string
}

// ForFormat returns the generator for a tournament format.
func ForFormat(format models.TournamentFormat, groupSize int) (BracketGenerator, error) {
	switch format {
	case models.FormatElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatGroupsElimination:
		return NewGroupsGenerator(groupSize), nil
	case models.FormatDoubleElimination:
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, format)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrFormatNotSupported, format)
	}
}

func validatePlayers(ids []int) error {
	if len(ids) < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughPlayers, len(ids))
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// byeMatch builds the immediately finished match that advances a player without an opponent.
func byeMatch(round, order int, phase string, playerID int) *BracketMatch {
	return &BracketMatch{
		Round:        round,
		OrderInRound: order,
		Phase:        phase,
		Player1ID:    playerID,
		IsBye:        true,
	}
}

func intPtr(v int) *int {
	return &v
}
