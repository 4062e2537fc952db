package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

// pointsTable holds the ranking points awarded for positions 1..8.
var pointsTable = [...]int{100, 75, 50, 25, 10, 10, 5, 5}

// participationPoints is awarded for every position below the table.
const participationPoints = 1

// PointsForPosition returns the ranking points for a 1-based final position.
func PointsForPosition(position int) int {
	if position >= 1 && position <= len(pointsTable) {
		return pointsTable[position-1]
	}
	return participationPoints
}

// Standing is one player's line in the final classification.
type Standing struct {
	PlayerID int `json:"player_id"`
	Wins     int `json:"wins"`
	SetDiff  int `json:"set_diff"`
	Position int `json:"position"`
	Points   int `json:"points"`
}

// ComputeStandings ranks every player who appears in matches or in extraPlayers.
// Order: wins desc, set differential desc, then first appearance (matches in creation
// order, player 1 before player 2, then extraPlayers). Bye advances count as wins but
// add nothing to the set differential.
func ComputeStandings(matches []*models.Match, extraPlayers []int) []Standing {
	ordered := slices.Clone(matches)
	slices.SortStableFunc(ordered, func(a, b *models.Match) int { return cmp.Compare(a.ID, b.ID) })

	index := make(map[int]int)
	standings := make([]Standing, 0)
	see := func(playerID int) *Standing {
		i, ok := index[playerID]
		if !ok {
			i = len(standings)
			index[playerID] = i
			standings = append(standings, Standing{PlayerID: playerID})
		}
		return &standings[i]
	}

	for _, m := range ordered {
		see(m.Player1ID)
		if m.Player2ID != nil {
			see(*m.Player2ID)
		}
	}
	for _, id := range extraPlayers {
		see(id)
	}

	for _, m := range ordered {
		if !m.IsFinished() || m.WinnerID == nil {
			continue
		}
		see(*m.WinnerID).Wins++
		if m.IsBye || m.Player2ID == nil {
			continue
		}
		diff := m.Player1Sets - m.Player2Sets
		see(m.Player1ID).SetDiff += diff
		see(*m.Player2ID).SetDiff -= diff
	}

	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(b.SetDiff, a.SetDiff)
	})
	for i := range standings {
		standings[i].Position = i + 1
		standings[i].Points = PointsForPosition(i + 1)
	}
	return standings
}

type standingsCalculator struct {
	playerRepo repositories.PlayerRepository
	tournRepo  repositories.TournamentRepository
	matchRepo  repositories.MatchRepository
	groupRepo  repositories.GroupRepository
	resultRepo repositories.ResultRepository
	logger     *slog.Logger
}

// finalizeOutcome is returned by a finalization that actually ran.
type finalizeOutcome struct {
	Tournament *models.Tournament
	Results    []*models.TournamentResult
}

func (o *finalizeOutcome) payload() TournamentFinishedPayload {
	p := TournamentFinishedPayload{TournamentID: o.Tournament.ID, Results: make([]int, 0, len(o.Results))}
	for _, r := range o.Results {
		if r.Position == 1 {
			winner := r.PlayerID
			p.WinnerID = &winner
		}
		p.Results = append(p.Results, r.ID)
	}
	return p
}

// finalize closes the tournament inside the caller's transaction: results, point awards,
// global ranking and the Finished status. It returns nil when t is already finished.
func (c *standingsCalculator) finalize(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*finalizeOutcome, error) {
	if t.Status == models.StatusFinished {
		return nil, nil
	}
	if err := c.playerRepo.LockRankings(ctx, exec); err != nil {
		return nil, err
	}

	matches, err := c.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{})
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load matches of tournament %d", t.ID)
	}
	groups, err := c.groupRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load groups of tournament %d", t.ID)
	}
	var members []int
	for _, g := range groups {
		members = append(members, g.PlayerIDs...)
	}

	standings := ComputeStandings(matches, members)
	results := make([]*models.TournamentResult, 0, len(standings))
	for _, s := range standings {
		results = append(results, &models.TournamentResult{
			TournamentID:  t.ID,
			PlayerID:      s.PlayerID,
			Position:      s.Position,
			PointsAwarded: s.Points,
		})
	}

	if len(results) > 0 {
		if err := c.resultRepo.BatchCreate(ctx, exec, results); err != nil {
			return nil, handleRepositoryError(err, "failed to store results of tournament %d", t.ID)
		}
	}
	for _, r := range results {
		if err := c.playerRepo.AddPoints(ctx, exec, r.PlayerID, r.PointsAwarded); err != nil {
			return nil, handleRepositoryError(err, "failed to award %d points to player %d", r.PointsAwarded, r.PlayerID)
		}
	}
	if err := c.playerRepo.RecomputeRankings(ctx, exec); err != nil {
		return nil, fmt.Errorf("failed to recompute rankings: %w", err)
	}
	if err := c.tournRepo.UpdateStatus(ctx, exec, t.ID, models.StatusFinished); err != nil {
		return nil, handleRepositoryError(err, "failed to finish tournament %d", t.ID)
	}
	t.Status = models.StatusFinished

	c.logger.Info("tournament finalized",
		slog.Int("tournament_id", t.ID),
		slog.Int("players", len(results)),
	)
	return &finalizeOutcome{Tournament: t, Results: results}, nil
}

// reverse takes back the points awarded by a tournament and deletes its results.
func (c *standingsCalculator) reverse(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	results, err := c.resultRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return 0, handleRepositoryError(err, "failed to load results of tournament %d", tournamentID)
	}
	if len(results) > 0 {
		if err := c.playerRepo.LockRankings(ctx, exec); err != nil {
			return 0, err
		}
	}
	for _, r := range results {
		if err := c.playerRepo.AddPoints(ctx, exec, r.PlayerID, -r.PointsAwarded); err != nil {
			return 0, handleRepositoryError(err, "failed to take back %d points from player %d", r.PointsAwarded, r.PlayerID)
		}
	}
	if err := c.resultRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
		return 0, handleRepositoryError(err, "failed to delete results of tournament %d", tournamentID)
	}
	return len(results), nil
}
