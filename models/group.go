package models

import "time"

type Group struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	Name         string    `json:"name"`
	PlayerIDs    []int     `json:"player_ids"`
	CreatedAt    time.Time `json:"created_at"`
}
