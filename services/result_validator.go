package services

import (
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
)

// SetScore is one submitted set, player 1's score first.
type SetScore struct {
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

// ResultSubmission is a result reported for a match. Status is either finished (the default)
// or in_progress for a live score update.
type ResultSubmission struct {
	WinnerID int                `json:"winner_id"`
	Sets     []SetScore         `json:"sets"`
	Status   models.MatchStatus `json:"status"`
}

func (s ResultSubmission) isLive() bool {
	return s.Status == models.MatchStatusInProgress
}

// ValidatedResult is what gets persisted for an accepted submission.
type ValidatedResult struct {
	Status      models.MatchStatus
	Player1Sets int
	Player2Sets int
	WinnerID    *int
	Sets        []models.Set
}

// ValidateResult checks a submission against the match and the tournament's best-of.
// Checks run in a fixed order and the first failure is returned.
func ValidateResult(match *models.Match, bestOf int, sub ResultSubmission) (*ValidatedResult, error) {
	if match.IsFinished() {
		return nil, fmt.Errorf("%w: match %d", ErrMatchAlreadyFinished, match.ID)
	}
	if match.IsBye || match.Player2ID == nil {
		return nil, fmt.Errorf("%w: match %d", ErrMatchIsBye, match.ID)
	}

	live := sub.isLive()
	if !live || sub.WinnerID != 0 {
		if !match.HasPlayer(sub.WinnerID) {
			return nil, fmt.Errorf("%w: player %d, match %d", ErrWinnerNotInMatch, sub.WinnerID, match.ID)
		}
	}
	if len(sub.Sets) == 0 && !live {
		return nil, ErrNoSets
	}

	setsToWin := models.SetsToWin(bestOf)
	sets := make([]models.Set, 0, len(sub.Sets))
	p1, p2 := 0, 0
	decidedAt := 0
	for i, s := range sub.Sets {
		number := i + 1
		if s.Player1Score < 0 || s.Player2Score < 0 {
			return nil, fmt.Errorf("%w: set %d", ErrNegativeScore, number)
		}
		if s.Player1Score == s.Player2Score {
			return nil, fmt.Errorf("%w: set %d ended %d-%d", ErrTiedSet, number, s.Player1Score, s.Player2Score)
		}
		if decidedAt == 0 && (p1 >= setsToWin || p2 >= setsToWin) {
			decidedAt = number
		}
		if s.Player1Score > s.Player2Score {
			p1++
		} else {
			p2++
		}
		sets = append(sets, models.Set{
			MatchID:      match.ID,
			Number:       number,
			Player1Score: s.Player1Score,
			Player2Score: s.Player2Score,
		})
	}

	if live {
		return &ValidatedResult{
			Status:      models.MatchStatusInProgress,
			Player1Sets: p1,
			Player2Sets: p2,
			Sets:        sets,
		}, nil
	}

	if p1 < setsToWin && p2 < setsToWin {
		need := setsToWin - max(p1, p2)
		return nil, fmt.Errorf("%w: %d more set(s) needed", ErrMatchIncomplete, need)
	}
	if p1 >= setsToWin && p2 >= setsToWin {
		return nil, fmt.Errorf("%w: %d-%d", ErrBothPlayersReachedSets, p1, p2)
	}
	if len(sets) > bestOf {
		return nil, fmt.Errorf("%w: %d sets for best of %d", ErrTooManySets, len(sets), bestOf)
	}
	if decidedAt != 0 {
		return nil, fmt.Errorf("%w: set %d", ErrSetAfterMatchDecided, decidedAt)
	}

	winner := match.Player1ID
	if p2 >= setsToWin {
		winner = *match.Player2ID
	}
	if winner != sub.WinnerID {
		return nil, fmt.Errorf("%w: scores give the match to player %d, not %d", ErrWinnerMismatch, winner, sub.WinnerID)
	}

	return &ValidatedResult{
		Status:      models.MatchStatusFinished,
		Player1Sets: p1,
		Player2Sets: p2,
		WinnerID:    &winner,
		Sets:        sets,
	}, nil
}
