package models

import "fmt"

// TournamentFormat is the closed set of bracket formats a tournament can be created with.
type TournamentFormat string

const (
	FormatElimination       TournamentFormat = "elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatGroupsElimination TournamentFormat = "groups_elimination"
	// FormatDoubleElimination is accepted on tournaments but has no generator.
	FormatDoubleElimination TournamentFormat = "double_elimination"
)

var knownFormats = []TournamentFormat{
	FormatElimination,
	FormatRoundRobin,
	FormatGroupsElimination,
	FormatDoubleElimination,
}

// ParseTournamentFormat validates a raw format value.
func ParseTournamentFormat(s string) (TournamentFormat, error) {
	for _, f := range knownFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown tournament format %q", s)
}

// Phase labels used for generated matches.
const (
	PhaseMain       = "Principal"
	PhaseRoundRobin = "RoundRobin"
)
