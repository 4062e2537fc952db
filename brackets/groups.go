package brackets

import (
	"context"
	"fmt"
)

type GroupsGenerator struct {
	groupSize int
}

func NewGroupsGenerator(groupSize int) BracketGenerator {
	if groupSize < 2 {
		groupSize = DefaultGroupSize
	}
	return &GroupsGenerator{groupSize: groupSize}
}

func (g *GroupsGenerator) GetName() string {
	return "Groups"
}

// GenerateBracket splits the field into ceil(n/groupSize) groups named A, B, C, ...
// Only the groups are produced; no matches are scheduled for this format.
func (g *GroupsGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := validatePlayers(params.PlayerIDs); err != nil {
		return nil, err
	}
	seeder := params.Seeder
	if seeder == nil {
		seeder = NewRandomSeeder(nil)
	}

	n := len(params.PlayerIDs)
	order, err := seeder.Seed(params.PlayerIDs, n)
	if err != nil {
		return nil, err
	}

	numGroups := (n + g.groupSize - 1) / g.groupSize
	groups := make([]*BracketGroup, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		start := i * g.groupSize
		end := min(start+g.groupSize, n)
		members := make([]int, 0, end-start)
		for _, slot := range order[start:end] {
			if slot != nil {
				members = append(members, *slot)
			}
		}
		groups = append(groups, &BracketGroup{Name: GroupName(i), PlayerIDs: members})
	}
	return &Bracket{Groups: groups}, nil
}

// GroupName returns the sequential letter name for the i-th group: A..Z, then AA, AB, ...
func GroupName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("%s%c", GroupName(i/26-1), rune('A'+i%26))
}
