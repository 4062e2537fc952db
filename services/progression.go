package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

type progressionEngine struct {
	matchRepo repositories.MatchRepository
	standings *standingsCalculator
	logger    *slog.Logger
}

// reconcileOutcome reports what a reconcile pass changed. Both fields are nil when the
// cohort is still open or was already resolved earlier.
type reconcileOutcome struct {
	NextRound []*models.Match
	Finalized *finalizeOutcome
}

// reconcile brings the tournament up to date after a match of the (round, phase) cohort
// finished. It is idempotent: running it again for a resolved cohort changes nothing.
// The caller holds the cohort lock and the tournament row lock.
func (e *progressionEngine) reconcile(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, round int, phase string) (*reconcileOutcome, error) {
	if t.Status != models.StatusInProgress {
		return &reconcileOutcome{}, nil
	}
	if t.Format == models.FormatRoundRobin {
		return e.reconcileSchedule(ctx, exec, t)
	}

	cohort, err := e.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{Round: &round, Phase: &phase})
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load round %d of tournament %d", round, t.ID)
	}
	winners, resolved := cohortWinners(cohort)
	if !resolved {
		return &reconcileOutcome{}, nil
	}

	switch len(winners) {
	case 0:
		return &reconcileOutcome{}, nil
	case 1:
		finalized, err := e.standings.finalize(ctx, exec, t)
		if err != nil {
			return nil, err
		}
		return &reconcileOutcome{Finalized: finalized}, nil
	}

	next := round + 1
	existing, err := e.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{Round: &next, Phase: &phase})
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load round %d of tournament %d", next, t.ID)
	}
	if len(existing) > 0 {
		e.logger.Debug("next round already generated",
			slog.Int("tournament_id", t.ID),
			slog.Int("round", next),
			slog.String("phase", phase),
		)
		return &reconcileOutcome{}, nil
	}

	matches := toMatches(t.ID, brackets.NextRound(winners, round, phase))
	if err := e.matchRepo.BatchCreate(ctx, exec, matches); err != nil {
		return nil, handleRepositoryError(err, "failed to create round %d of tournament %d", next, t.ID)
	}
	e.logger.Info("next round generated",
		slog.Int("tournament_id", t.ID),
		slog.Int("round", next),
		slog.String("phase", phase),
		slog.Int("matches", len(matches)),
	)
	return &reconcileOutcome{NextRound: matches}, nil
}

// reconcileSchedule handles formats whose whole schedule exists up front: the tournament
// finalizes once every match is finished.
func (e *progressionEngine) reconcileSchedule(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*reconcileOutcome, error) {
	all, err := e.matchRepo.ListByTournament(ctx, exec, t.ID, repositories.MatchFilter{})
	if err != nil {
		return nil, handleRepositoryError(err, "failed to load matches of tournament %d", t.ID)
	}
	if _, resolved := cohortWinners(all); !resolved || len(all) == 0 {
		return &reconcileOutcome{}, nil
	}
	finalized, err := e.standings.finalize(ctx, exec, t)
	if err != nil {
		return nil, err
	}
	return &reconcileOutcome{Finalized: finalized}, nil
}

// cohortWinners returns the winners in match creation order, and false if any match
// is not finished yet.
func cohortWinners(cohort []*models.Match) ([]int, bool) {
	ordered := slices.Clone(cohort)
	slices.SortStableFunc(ordered, func(a, b *models.Match) int { return cmp.Compare(a.ID, b.ID) })

	winners := make([]int, 0, len(ordered))
	for _, m := range ordered {
		if !m.IsFinished() {
			return nil, false
		}
		if m.WinnerID != nil {
			winners = append(winners, *m.WinnerID)
		}
	}
	return winners, true
}
