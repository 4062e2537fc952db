package models

import "time"

// TournamentResult is the final placement of a player in a finished tournament.
type TournamentResult struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	PlayerID      int       `json:"player_id" db:"player_id"`
	Position      int       `json:"position" db:"position"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
