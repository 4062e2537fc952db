package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusFinished   MatchStatus = "finished"
)

// Match is a single table-tennis match. Player2ID is nil for a bye.
type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	Player1ID    int         `json:"player1_id"`
	Player2ID    *int        `json:"player2_id,omitempty"`
	Round        int         `json:"round"`
	Phase        string      `json:"phase"`
	Status       MatchStatus `json:"status"`
	Player1Sets  int         `json:"player1_sets"`
	Player2Sets  int         `json:"player2_sets"`
	WinnerID     *int        `json:"winner_id,omitempty"`
	IsBye        bool        `json:"is_bye"`
	CreatedAt    time.Time   `json:"created_at"`

	Sets []Set `json:"sets,omitempty"`
}

// HasPlayer reports whether playerID plays in this match.
func (m *Match) HasPlayer(playerID int) bool {
	if m.Player1ID == playerID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == playerID
}

func (m *Match) IsFinished() bool {
	return m.Status == MatchStatusFinished
}

// Set is one game of a match. Number is 1-based and contiguous within the match.
type Set struct {
	ID           int `json:"id"`
	MatchID      int `json:"match_id"`
	Number       int `json:"number"`
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}
