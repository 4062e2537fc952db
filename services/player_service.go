package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

type CreatePlayerInput struct {
	Name string `json:"name"`
}

type PlayerProfile struct {
	*models.Player
	Results []*models.TournamentResult `json:"results"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*PlayerProfile, error)
	// ListRanking returns players ordered by cumulative points.
	ListRanking(ctx context.Context, filter repositories.ListPlayersFilter) ([]*models.Player, error)
}

type playerService struct {
	tx     repositories.Transactor
	repos  repositories.Repositories
	logger *slog.Logger
}

func NewPlayerService(tx repositories.Transactor, repos repositories.Repositories, logger *slog.Logger) PlayerService {
	return &playerService{tx: tx, repos: repos, logger: orDefault(logger)}
}

// CreatePlayer registers an active player with zero points. Rankings are recomputed in the
// same transaction so the new player is ranked right away.
func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	var created *models.Player
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.repos.Players.LockRankings(ctx, exec); err != nil {
			return err
		}
		p := &models.Player{Name: name, Active: true}
		if err := s.repos.Players.Create(ctx, exec, p); err != nil {
			return handleRepositoryError(err, "failed to create player %q", name)
		}
		if err := s.repos.Players.RecomputeRankings(ctx, exec); err != nil {
			return handleRepositoryError(err, "failed to recompute rankings")
		}
		var err error
		created, err = s.repos.Players.GetByID(ctx, exec, p.ID)
		return handleRepositoryError(err, "failed to reload player %d", p.ID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("player created", slog.Int("player_id", created.ID))
	return created, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*PlayerProfile, error) {
	p, err := s.repos.Players.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to get player %d", id)
	}
	results, err := s.repos.Results.ListByPlayer(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list results of player %d", id)
	}
	return &PlayerProfile{Player: p, Results: results}, nil
}

func (s *playerService) ListRanking(ctx context.Context, filter repositories.ListPlayersFilter) ([]*models.Player, error) {
	players, err := s.repos.Players.List(ctx, nil, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "failed to list players")
	}
	return players, nil
}
