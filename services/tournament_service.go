package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/Dosada05/tt-tournament/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name       string `json:"name"`
	Format     string `json:"format"`
	BestOf     int    `json:"best_of"`
	MaxPlayers int    `json:"max_players"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error)
	// GetFullTournamentData returns the tournament with its matches (and sets), groups,
	// results and the players involved.
	GetFullTournamentData(ctx context.Context, id int) (*models.Tournament, error)
	GetResults(ctx context.Context, id int) ([]*models.TournamentResult, error)
	// FinalizeTournament closes an in-progress tournament with the standings so far.
	// Finalizing a finished tournament returns its stored results and changes nothing.
	FinalizeTournament(ctx context.Context, id int) ([]*models.TournamentResult, error)
	// DeleteTournament removes a tournament and takes back the points it awarded.
	// A tournament with matches is only deleted when force is set.
	DeleteTournament(ctx context.Context, id int, force bool) error
}

type tournamentService struct {
	tx        repositories.Transactor
	repos     repositories.Repositories
	notifier  Notifier
	logger    *slog.Logger
	standings *standingsCalculator
	archiver  *resultArchiver
}

func NewTournamentService(
	tx repositories.Transactor,
	repos repositories.Repositories,
	notifier Notifier,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	logger = orDefault(logger)
	return &tournamentService{
		tx:        tx,
		repos:     repos,
		notifier:  orNop(notifier),
		logger:    logger,
		standings: newStandingsCalculator(repos, logger),
		archiver:  &resultArchiver{uploader: uploader, logger: logger},
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	format, err := models.ParseTournamentFormat(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	bestOf := input.BestOf
	if bestOf == 0 {
		bestOf = models.DefaultBestOf
	}
	if !models.ValidBestOf(bestOf) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBestOf, bestOf)
	}
	if input.MaxPlayers < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxPlayers, input.MaxPlayers)
	}

	t := &models.Tournament{
		Name:       name,
		Format:     format,
		Status:     models.StatusPending,
		BestOf:     bestOf,
		MaxPlayers: input.MaxPlayers,
	}
	if err := s.repos.Tournaments.Create(ctx, nil, t); err != nil {
		return nil, handleRepositoryError(err, "failed to create tournament %q", name)
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.String("format", string(t.Format)))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.repos.Tournaments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get tournament %d", id)
	}
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	tournaments, err := s.repos.Tournaments.List(ctx, nil, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list tournaments")
	}
	return tournaments, nil
}

func (s *tournamentService) GetFullTournamentData(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		matches []*models.Match
		sets    []models.Set
		groups  []*models.Group
		results []*models.TournamentResult
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.repos.Matches.ListByTournament(gCtx, nil, id, repositories.MatchFilter{})
		return handleRepositoryError(err, "failed to fetch matches of tournament %d", id)
	})
	g.Go(func() error {
		var err error
		sets, err = s.repos.Sets.ListByTournament(gCtx, nil, id)
		return handleRepositoryError(err, "failed to fetch sets of tournament %d", id)
	})
	g.Go(func() error {
		var err error
		groups, err = s.repos.Groups.ListByTournament(gCtx, nil, id)
		return handleRepositoryError(err, "failed to fetch groups of tournament %d", id)
	})
	g.Go(func() error {
		var err error
		results, err = s.repos.Results.ListByTournament(gCtx, nil, id)
		return handleRepositoryError(err, "failed to fetch results of tournament %d", id)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	setsByMatch := make(map[int][]models.Set)
	for _, set := range sets {
		setsByMatch[set.MatchID] = append(setsByMatch[set.MatchID], set)
	}
	for _, m := range matches {
		m.Sets = setsByMatch[m.ID]
	}

	players, err := s.repos.Players.ListByIDs(ctx, nil, involvedPlayers(matches, groups, results))
	if err != nil {
		return nil, handleRepositoryError(err, "failed to fetch players of tournament %d", id)
	}
	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, r := range results {
		r.Player = byID[r.PlayerID]
	}

	t.Matches = derefMatches(matches)
	t.Groups = derefGroups(groups)
	t.Results = derefResults(results)
	t.Players = derefPlayers(players)
	return t, nil
}

func involvedPlayers(matches []*models.Match, groups []*models.Group, results []*models.TournamentResult) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	add := func(id int) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, m := range matches {
		add(m.Player1ID)
		if m.Player2ID != nil {
			add(*m.Player2ID)
		}
	}
	for _, g := range groups {
		for _, id := range g.PlayerIDs {
			add(id)
		}
	}
	for _, r := range results {
		add(r.PlayerID)
	}
	return ids
}

func (s *tournamentService) GetResults(ctx context.Context, id int) ([]*models.TournamentResult, error) {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return nil, err
	}
	results, err := s.repos.Results.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list results of tournament %d", id)
	}
	return results, nil
}

func (s *tournamentService) FinalizeTournament(ctx context.Context, id int) ([]*models.TournamentResult, error) {
	var (
		outcome *finalizeOutcome
		stored  []*models.TournamentResult
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.repos.Tournaments.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return handleRepositoryError(err, "failed to load tournament %d", id)
		}
		switch t.Status {
		case models.StatusPending:
			return fmt.Errorf("%w: tournament %d has no bracket yet", ErrTournamentNotInProgress, id)
		case models.StatusFinished:
			stored, err = s.repos.Results.ListByTournament(ctx, exec, id)
			return handleRepositoryError(err, "failed to list results of tournament %d", id)
		}
		outcome, err = s.standings.finalize(ctx, exec, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return stored, nil
	}

	s.notifier.Emit(brackets.TournamentRoom(id), EventTournamentFinished, outcome.payload())
	s.archiver.archive(ctx, outcome.Tournament, outcome.Results)
	return outcome.Results, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int, force bool) error {
	var reversed int
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.repos.Tournaments.GetByIDForUpdate(ctx, exec, id); err != nil {
			return handleRepositoryError(err, "failed to load tournament %d", id)
		}
		matches, err := s.repos.Matches.ListByTournament(ctx, exec, id, repositories.MatchFilter{})
		if err != nil {
			return handleRepositoryError(err, "failed to list matches of tournament %d", id)
		}
		if len(matches) > 0 && !force {
			return fmt.Errorf("%w: tournament %d has %d matches, delete with force", ErrTournamentInUse, id, len(matches))
		}

		reversed, err = s.standings.reverse(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := s.repos.Matches.DeleteByTournament(ctx, exec, id); err != nil {
			return handleRepositoryError(err, "failed to delete matches of tournament %d", id)
		}
		if err := s.repos.Groups.DeleteByTournament(ctx, exec, id); err != nil {
			return handleRepositoryError(err, "failed to delete groups of tournament %d", id)
		}
		if err := s.repos.Tournaments.Delete(ctx, exec, id); err != nil {
			return handleRepositoryError(err, "failed to delete tournament %d", id)
		}
		if reversed > 0 {
			if err := s.repos.Players.RecomputeRankings(ctx, exec); err != nil {
				return fmt.Errorf("failed to recompute rankings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament deleted",
		slog.Int("tournament_id", id),
		slog.Bool("force", force),
		slog.Int("results_reversed", reversed),
	)
	if reversed > 0 {
		s.archiver.remove(ctx, id)
	}
	return nil
}
