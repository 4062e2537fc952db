package models

import "time"

// Player is a registered table-tennis player. Points only change through tournament
// finalization and deletion; Ranking is derived from Points.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Ranking   *int      `json:"ranking,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
