package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/Dosada05/tt-tournament/storage"
)

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatchesByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error)
	// StartMatch moves a pending match to in progress.
	StartMatch(ctx context.Context, id int) (*models.Match, error)
	// SubmitResult validates and stores a result, then advances the tournament when the
	// match's round is complete.
	SubmitResult(ctx context.Context, id int, sub ResultSubmission) (*models.Match, error)
}

type matchService struct {
	tx          repositories.Transactor
	repos       repositories.Repositories
	notifier    Notifier
	logger      *slog.Logger
	locks       *cohortLocks
	progression *progressionEngine
	archiver    *resultArchiver
}

func NewMatchService(
	tx repositories.Transactor,
	repos repositories.Repositories,
	notifier Notifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) MatchService {
	logger = orDefault(logger)
	return &matchService{
		tx:       tx,
		repos:    repos,
		notifier: orNop(notifier),
		logger:   logger,
		locks:    newCohortLocks(),
		progression: &progressionEngine{
			matchRepo: repos.Matches,
			standings: newStandingsCalculator(repos, logger),
			logger:    logger,
		},
		archiver: &resultArchiver{uploader: uploader, logger: logger},
	}
}

func newStandingsCalculator(repos repositories.Repositories, logger *slog.Logger) *standingsCalculator {
	return &standingsCalculator{
		playerRepo: repos.Players,
		tournRepo:  repos.Tournaments,
		matchRepo:  repos.Matches,
		groupRepo:  repos.Groups,
		resultRepo: repos.Results,
		logger:     logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	m, err := s.repos.Matches.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get match %d", id)
	}
	sets, err := s.repos.Sets.ListByMatch(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get sets of match %d", id)
	}
	m.Sets = sets
	return m, nil
}

func (s *matchService) ListMatchesByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	if _, err := s.repos.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament %d", tournamentID)
	}
	matches, err := s.repos.Matches.ListByTournament(ctx, nil, tournamentID, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list matches of tournament %d", tournamentID)
	}
	return matches, nil
}

func (s *matchService) StartMatch(ctx context.Context, id int) (*models.Match, error) {
	var started *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.repos.Matches.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "failed to get match %d", id)
		}
		t, err := s.repos.Tournaments.GetByIDForUpdate(ctx, exec, m.TournamentID)
		if err != nil {
			return handleRepositoryError(err, "failed to load tournament %d", m.TournamentID)
		}
		switch {
		case m.IsBye:
			return fmt.Errorf("%w: match %d", ErrMatchIsBye, m.ID)
		case m.IsFinished():
			return fmt.Errorf("%w: match %d", ErrMatchAlreadyFinished, m.ID)
		case m.Status != models.MatchStatusPending:
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotPending, m.ID, m.Status)
		case t.Status != models.StatusInProgress:
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotInProgress, t.ID, t.Status)
		}
		if err := s.repos.Matches.UpdateStatus(ctx, exec, m.ID, models.MatchStatusInProgress); err != nil {
			return handleRepositoryError(err, "failed to start match %d", m.ID)
		}
		m.Status = models.MatchStatusInProgress
		started = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(brackets.TournamentRoom(started.TournamentID), EventMatchStarted, started)
	return started, nil
}

func (s *matchService) SubmitResult(ctx context.Context, id int, sub ResultSubmission) (*models.Match, error) {
	switch sub.Status {
	case "":
		sub.Status = models.MatchStatusFinished
	case models.MatchStatusFinished, models.MatchStatusInProgress:
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidMatchStatus, sub.Status)
	}

	m, err := s.repos.Matches.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get match %d", id)
	}

	// Round and phase never change, so the cohort key read outside the transaction is stable.
	unlock := s.locks.Lock(cohortKey(m.TournamentID, m.Round, m.Phase))
	defer unlock()

	var (
		updated *models.Match
		outcome *reconcileOutcome
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.repos.Tournaments.GetByIDForUpdate(ctx, exec, m.TournamentID)
		if err != nil {
			return handleRepositoryError(err, "failed to load tournament %d", m.TournamentID)
		}
		current, err := s.repos.Matches.GetByID(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "failed to get match %d", id)
		}

		res, err := ValidateResult(current, t.BestOf, sub)
		if err != nil {
			return err
		}
		if t.Status != models.StatusInProgress {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotInProgress, t.ID, t.Status)
		}

		current.Status = res.Status
		current.Player1Sets = res.Player1Sets
		current.Player2Sets = res.Player2Sets
		current.WinnerID = res.WinnerID
		if err := s.repos.Matches.UpdateResult(ctx, exec, current); err != nil {
			return handleRepositoryError(err, "failed to store result of match %d", id)
		}
		if err := s.repos.Sets.ReplaceForMatch(ctx, exec, id, res.Sets); err != nil {
			return handleRepositoryError(err, "failed to store sets of match %d", id)
		}
		current.Sets = res.Sets
		updated = current

		if res.Status != models.MatchStatusFinished {
			return nil
		}
		outcome, err = s.progression.reconcile(ctx, exec, t, current.Round, current.Phase)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", updated.ID),
		slog.Int("tournament_id", updated.TournamentID),
		slog.String("status", string(updated.Status)),
		slog.Int("player1_sets", updated.Player1Sets),
		slog.Int("player2_sets", updated.Player2Sets),
	)
	s.publish(ctx, updated, outcome)
	return updated, nil
}

// publish emits the events of a committed submission and archives a finished tournament.
func (s *matchService) publish(ctx context.Context, m *models.Match, outcome *reconcileOutcome) {
	room := brackets.TournamentRoom(m.TournamentID)
	s.notifier.Emit(room, EventMatchUpdated, m)
	if outcome == nil {
		return
	}
	if len(outcome.NextRound) > 0 {
		p := NextRoundPayload{
			TournamentID: m.TournamentID,
			Round:        outcome.NextRound[0].Round,
			Phase:        outcome.NextRound[0].Phase,
			MatchIDs:     make([]int, 0, len(outcome.NextRound)),
		}
		for _, nm := range outcome.NextRound {
			p.MatchIDs = append(p.MatchIDs, nm.ID)
		}
		s.notifier.Emit(room, EventNextRoundGenerated, p)
	}
	if outcome.Finalized != nil {
		s.notifier.Emit(room, EventTournamentFinished, outcome.Finalized.payload())
		s.archiver.archive(ctx, outcome.Finalized.Tournament, outcome.Finalized.Results)
	}
}
