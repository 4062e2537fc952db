package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

type SeedingMode string

const (
	SeedingAutomatic SeedingMode = "automatic"
	SeedingManual    SeedingMode = "manual"
)

// GenerateBracketRequest is the caller contract for bracket generation. In manual mode
// PlayerIDs may be omitted, in which case the players named by ManualPositions are used.
type GenerateBracketRequest struct {
	PlayerIDs       []int                     `json:"player_ids"`
	SeedingMode     SeedingMode               `json:"seeding_mode"`
	ManualPositions []brackets.ManualPosition `json:"manual_positions,omitempty"`
}

type GenerateBracketResult struct {
	MatchesCreated int             `json:"matches_created"`
	GroupsCreated  int             `json:"groups_created"`
	Matches        []*models.Match `json:"matches,omitempty"`
	Groups         []*models.Group `json:"groups,omitempty"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int, req GenerateBracketRequest) (*GenerateBracketResult, error)
}

type bracketService struct {
	tx        repositories.Transactor
	repos     repositories.Repositories
	notifier  Notifier
	logger    *slog.Logger
	groupSize int
	rng       *rand.Rand
}

type BracketServiceOption func(*bracketService)

// WithRand makes automatic seeding draw from rng instead of the global source.
func WithRand(rng *rand.Rand) BracketServiceOption {
	return func(s *bracketService) { s.rng = rng }
}

// WithGroupSize sets the target group size for the groups format.
func WithGroupSize(size int) BracketServiceOption {
	return func(s *bracketService) { s.groupSize = size }
}

func NewBracketService(
	tx repositories.Transactor,
	repos repositories.Repositories,
	notifier Notifier,
	logger *slog.Logger,
	opts ...BracketServiceOption,
) BracketService {
	s := &bracketService{
		tx:        tx,
		repos:     repos,
		notifier:  orNop(notifier),
		logger:    orDefault(logger),
		groupSize: brackets.DefaultGroupSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, req GenerateBracketRequest) (*GenerateBracketResult, error) {
	seeder, playerIDs, err := s.seederFor(req)
	if err != nil {
		return nil, err
	}

	result := &GenerateBracketResult{}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.repos.Tournaments.GetByIDForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "failed to load tournament %d", tournamentID)
		}
		if t.Status != models.StatusPending {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotPending, t.ID, t.Status)
		}
		generator, err := brackets.ForFormat(t.Format, s.groupSize)
		if err != nil {
			return handleBracketError(err)
		}
		if err := s.checkPlayers(ctx, exec, t, playerIDs); err != nil {
			return err
		}

		bracket, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Tournament: t,
			PlayerIDs:  playerIDs,
			Seeder:     seeder,
		})
		if err != nil {
			return handleBracketError(err)
		}

		if len(bracket.Matches) > 0 {
			matches := toMatches(t.ID, bracket.Matches)
			if err := s.repos.Matches.BatchCreate(ctx, exec, matches); err != nil {
				return handleRepositoryError(err, "failed to store bracket of tournament %d", t.ID)
			}
			result.Matches = matches
		}
		if len(bracket.Groups) > 0 {
			groups := make([]*models.Group, 0, len(bracket.Groups))
			for _, bg := range bracket.Groups {
				groups = append(groups, &models.Group{TournamentID: t.ID, Name: bg.Name, PlayerIDs: bg.PlayerIDs})
			}
			if err := s.repos.Groups.BatchCreate(ctx, exec, groups); err != nil {
				return handleRepositoryError(err, "failed to store groups of tournament %d", t.ID)
			}
			result.Groups = groups
		}

		if err := s.repos.Tournaments.UpdateStatus(ctx, exec, t.ID, models.StatusInProgress); err != nil {
			return handleRepositoryError(err, "failed to start tournament %d", t.ID)
		}
		s.logger.Info("bracket generated",
			slog.Int("tournament_id", t.ID),
			slog.String("format", string(t.Format)),
			slog.String("generator", generator.GetName()),
			slog.Int("players", len(playerIDs)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.MatchesCreated = len(result.Matches)
	result.GroupsCreated = len(result.Groups)
	s.notifier.Emit(brackets.TournamentRoom(tournamentID), EventBracketGenerated, BracketGeneratedPayload{
		TournamentID:   tournamentID,
		MatchesCreated: result.MatchesCreated,
		GroupsCreated:  result.GroupsCreated,
	})
	return result, nil
}

func (s *bracketService) seederFor(req GenerateBracketRequest) (brackets.Seeder, []int, error) {
	switch req.SeedingMode {
	case "", SeedingAutomatic:
		return brackets.NewRandomSeeder(s.rng), req.PlayerIDs, nil
	case SeedingManual:
		if len(req.ManualPositions) == 0 {
			return nil, nil, fmt.Errorf("%w: manual seeding requires manual_positions", ErrInvalidSeeding)
		}
		seeder := brackets.NewManualSeeder(req.ManualPositions)
		playerIDs := req.PlayerIDs
		if len(playerIDs) == 0 {
			playerIDs = seeder.PlayerIDs()
		}
		return seeder, playerIDs, nil
	default:
		return nil, nil, fmt.Errorf("%w: got %q", ErrInvalidSeedingMode, req.SeedingMode)
	}
}

// checkPlayers resolves the field: at least two distinct, existing, active players within
// the tournament's capacity.
func (s *bracketService) checkPlayers(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, playerIDs []int) error {
	if len(playerIDs) < 2 {
		return fmt.Errorf("%w: got %d", ErrNotEnoughPlayers, len(playerIDs))
	}
	seen := make(map[int]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: player %d listed more than once", ErrInvalidSeeding, id)
		}
		seen[id] = struct{}{}
	}
	if t.MaxPlayers > 0 && len(playerIDs) > t.MaxPlayers {
		return fmt.Errorf("%w: %d players, limit is %d", ErrTooManyPlayers, len(playerIDs), t.MaxPlayers)
	}

	players, err := s.repos.Players.ListByIDs(ctx, exec, playerIDs)
	if err != nil {
		return handleRepositoryError(err, "failed to load players")
	}
	found := make(map[int]*models.Player, len(players))
	for _, p := range players {
		found[p.ID] = p
	}
	for _, id := range playerIDs {
		p, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: id %d", ErrPlayerNotFound, id)
		}
		if !p.Active {
			return fmt.Errorf("%w: id %d", ErrPlayerInactive, id)
		}
	}
	return nil
}

func orNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
