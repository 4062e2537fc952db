package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

// handleRepositoryError translates repository sentinels into the service taxonomy.
// Unknown errors are wrapped with context and left uncategorized.
func handleRepositoryError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %s", ErrTournamentNotFound, msg)
	case errors.Is(err, repositories.ErrMatchNotFound):
		return fmt.Errorf("%w: %s", ErrMatchNotFound, msg)
	case errors.Is(err, repositories.ErrPlayerNotFound),
		errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, msg)
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return fmt.Errorf("%w: %s", ErrTournamentNameConflict, msg)
	case errors.Is(err, repositories.ErrTournamentInUse):
		return fmt.Errorf("%w: %s", ErrTournamentInUse, msg)
	case errors.Is(err, repositories.ErrResultConflict):
		return fmt.Errorf("%w: %s: %v", ErrConflict, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// handleBracketError translates generator and seeding errors into the service taxonomy.
func handleBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrFormatNotSupported):
		return fmt.Errorf("%w: %v", ErrFormatNotSupported, err)
	case errors.Is(err, brackets.ErrNotEnoughPlayers):
		return fmt.Errorf("%w: %v", ErrNotEnoughPlayers, err)
	case errors.Is(err, brackets.ErrSeedPlayerUnknown):
		return fmt.Errorf("%w: %v", ErrPlayerNotFound, err)
	case errors.Is(err, brackets.ErrDuplicatePlayer),
		errors.Is(err, brackets.ErrSeedPositionOutOfRange),
		errors.Is(err, brackets.ErrSeedPositionTaken),
		errors.Is(err, brackets.ErrSeedPlayerUnplaced):
		return fmt.Errorf("%w: %v", ErrInvalidSeeding, err)
	}
	return fmt.Errorf("failed to generate bracket: %w", err)
}

// toMatches converts generated matches into storable ones. A bye is stored finished with the
// lone player as winner and a 1-0 set count.
func toMatches(tournamentID int, generated []*brackets.BracketMatch) []*models.Match {
	matches := make([]*models.Match, 0, len(generated))
	for _, bm := range generated {
		m := &models.Match{
			TournamentID: tournamentID,
			Player1ID:    bm.Player1ID,
			Player2ID:    bm.Player2ID,
			Round:        bm.Round,
			Phase:        bm.Phase,
			Status:       models.MatchStatusPending,
			IsBye:        bm.IsBye,
		}
		if bm.IsBye {
			winner := bm.Player1ID
			m.Status = models.MatchStatusFinished
			m.WinnerID = &winner
			m.Player1Sets = 1
		}
		matches = append(matches, m)
	}
	return matches
}

func derefMatches(slice []*models.Match) []models.Match {
	result := make([]models.Match, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func derefGroups(slice []*models.Group) []models.Group {
	result := make([]models.Group, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func derefResults(slice []*models.TournamentResult) []models.TournamentResult {
	result := make([]models.TournamentResult, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func derefPlayers(slice []*models.Player) []models.Player {
	result := make([]models.Player, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}
