package models

import "time"

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusPending    TournamentStatus = "pending"
	StatusInProgress TournamentStatus = "in_progress"
	StatusFinished   TournamentStatus = "finished"
)

// Best-of limits for a match. Only odd values are allowed so a match always has a decider.
const (
	MinBestOf     = 3
	MaxBestOf     = 7
	DefaultBestOf = 5
)

// Tournament представляет турнир.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Format     TournamentFormat `json:"format" db:"format"`
	Status     TournamentStatus `json:"status" db:"status"`
	BestOf     int              `json:"best_of" db:"best_of"`
	MaxPlayers int              `json:"max_players" db:"max_players"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	// Populated by the bracket view only.
	Matches []Match            `json:"matches,omitempty" db:"-"`
	Groups  []Group            `json:"groups,omitempty" db:"-"`
	Results []TournamentResult `json:"results,omitempty" db:"-"`
	Players []Player           `json:"players,omitempty" db:"-"`
}

// SetsToWin is the number of sets a player needs to take the match.
func (t *Tournament) SetsToWin() int {
	return SetsToWin(t.BestOf)
}

// SetsToWin returns ceil(bestOf/2).
func SetsToWin(bestOf int) int {
	return (bestOf + 1) / 2
}

// ValidBestOf reports whether n is an odd value between MinBestOf and MaxBestOf.
func ValidBestOf(n int) bool {
	return n >= MinBestOf && n <= MaxBestOf && n%2 == 1
}
