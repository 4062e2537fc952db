package services

// Engine events published through a Notifier. The topic is the tournament room,
// see brackets.TournamentRoom.
const (
	EventBracketGenerated   = "bracket_generated"
	EventMatchStarted       = "match_started"
	EventMatchUpdated       = "match_updated"
	EventNextRoundGenerated = "next_round_generated"
	EventTournamentFinished = "tournament_finished"
)

// Notifier publishes engine events. Emit must not block on delivery and its failures
// never affect the operation that triggered it.
type Notifier interface {
	Emit(topic, event string, payload any)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Emit(string, string, any) {}

type BracketGeneratedPayload struct {
	TournamentID   int `json:"tournament_id"`
	MatchesCreated int `json:"matches_created"`
	GroupsCreated  int `json:"groups_created"`
}

type NextRoundPayload struct {
	TournamentID int    `json:"tournament_id"`
	Round        int    `json:"round"`
	Phase        string `json:"phase"`
	MatchIDs     []int  `json:"match_ids"`
}

type TournamentFinishedPayload struct {
	TournamentID int   `json:"tournament_id"`
	WinnerID     *int  `json:"winner_id,omitempty"`
	Results      []int `json:"result_ids"`
}
