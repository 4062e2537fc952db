package brackets

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrSeedPositionOutOfRange = errors.New("seed position is outside the bracket")
	ErrSeedPositionTaken      = errors.New("seed position assigned twice")
	ErrSeedPlayerUnknown      = errors.New("seeded player is not part of the bracket")
	ErrSeedPlayerUnplaced     = errors.New("player has no seed position")
)

// Seeder assigns players to bracket slots. The returned slice has slotCount entries;
// nil entries are byes.
type Seeder interface {
	Seed(playerIDs []int, slotCount int) ([]*int, error)
}

// RandomSeeder shuffles the players with Fisher-Yates and fills the leading slots.
// Bye slots are not randomized: the padding byes always occupy the trailing slots,
// so byes are never spread through the bracket. At most one player is drawn against
// a bye and the empty pairs at the end are dropped by the generator.
type RandomSeeder struct {
	rng *rand.Rand
}

// NewRandomSeeder returns a seeder backed by rng. A nil rng uses the global source.
func NewRandomSeeder(rng *rand.Rand) *RandomSeeder {
	return &RandomSeeder{rng: rng}
}

func (s *RandomSeeder) Seed(playerIDs []int, slotCount int) ([]*int, error) {
	if slotCount < len(playerIDs) {
		return nil, fmt.Errorf("%w: %d players for %d slots", ErrSeedPositionOutOfRange, len(playerIDs), slotCount)
	}
	shuffled := make([]int, len(playerIDs))
	copy(shuffled, playerIDs)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	slots := make([]*int, slotCount)
	for i, id := range shuffled {
		slots[i] = intPtr(id)
	}
	return slots, nil
}

// ManualPosition places one player at a 1-based bracket position.
type ManualPosition struct {
	Position int `json:"position"`
	PlayerID int `json:"player_id"`
}

// ManualSeeder uses caller-supplied positions. Positions left empty become byes.
type ManualSeeder struct {
	positions []ManualPosition
}

func NewManualSeeder(positions []ManualPosition) *ManualSeeder {
	return &ManualSeeder{positions: positions}
}

// PlayerIDs returns the players referenced by the seeding, in the order given.
func (s *ManualSeeder) PlayerIDs() []int {
	ids := make([]int, 0, len(s.positions))
	for _, p := range s.positions {
		ids = append(ids, p.PlayerID)
	}
	return ids
}

func (s *ManualSeeder) Seed(playerIDs []int, slotCount int) ([]*int, error) {
	inBracket := make(map[int]bool, len(playerIDs))
	for _, id := range playerIDs {
		inBracket[id] = false
	}

	slots := make([]*int, slotCount)
	for _, p := range s.positions {
		if p.Position < 1 || p.Position > slotCount {
			return nil, fmt.Errorf("%w: position %d, bracket has %d slots", ErrSeedPositionOutOfRange, p.Position, slotCount)
		}
		placed, ok := inBracket[p.PlayerID]
		if !ok {
			return nil, fmt.Errorf("%w: player %d", ErrSeedPlayerUnknown, p.PlayerID)
		}
		if placed {
			return nil, fmt.Errorf("%w: player %d", ErrDuplicatePlayer, p.PlayerID)
		}
		if slots[p.Position-1] != nil {
			return nil, fmt.Errorf("%w: position %d", ErrSeedPositionTaken, p.Position)
		}
		slots[p.Position-1] = intPtr(p.PlayerID)
		inBracket[p.PlayerID] = true
	}

	for _, id := range playerIDs {
		if !inBracket[id] {
			return nil, fmt.Errorf("%w: player %d", ErrSeedPlayerUnplaced, id)
		}
	}
	return slots, nil
}
