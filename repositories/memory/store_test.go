package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayer(t *testing.T, s *Store, name string, points int) *models.Player {
	t.Helper()
	p := &models.Player{Name: name, Points: points, Active: true}
	require.NoError(t, s.Players().Create(context.Background(), nil, p))
	return p
}

func TestRecomputeRankingsOrdersByPointsThenID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	low := newPlayer(t, s, "low", 10)
	tiedFirst := newPlayer(t, s, "tied-first", 50)
	tiedSecond := newPlayer(t, s, "tied-second", 50)

	require.NoError(t, s.Players().RecomputeRankings(ctx, nil))

	for id, want := range map[int]int{tiedFirst.ID: 1, tiedSecond.ID: 2, low.ID: 3} {
		p, err := s.Players().GetByID(ctx, nil, id)
		require.NoError(t, err)
		require.NotNil(t, p.Ranking)
		assert.Equal(t, want, *p.Ranking, "player %d", id)
	}

	list, err := s.Players().List(ctx, nil, repositories.ListPlayersFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, tiedFirst.ID, list[0].ID)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPlayer(t, s, "ana", 0)

	got, err := s.Players().GetByID(ctx, nil, p.ID)
	require.NoError(t, err)
	got.Points = 500

	again, err := s.Players().GetByID(ctx, nil, p.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Points)
}

func TestTournamentDeleteInUse(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := newPlayer(t, s, "a", 0)
	b := newPlayer(t, s, "b", 0)
	tour := &models.Tournament{Name: "cup", Format: models.FormatElimination, Status: models.StatusPending, BestOf: 5}
	require.NoError(t, s.Tournaments().Create(ctx, nil, tour))
	assert.ErrorIs(t, s.Tournaments().Create(ctx, nil, &models.Tournament{Name: "cup"}), repositories.ErrTournamentNameConflict)

	m := &models.Match{TournamentID: tour.ID, Player1ID: a.ID, Player2ID: &b.ID, Round: 1, Phase: models.PhaseMain, Status: models.MatchStatusPending}
	require.NoError(t, s.Matches().BatchCreate(ctx, nil, []*models.Match{m}))
	assert.ErrorIs(t, s.Tournaments().Delete(ctx, nil, tour.ID), repositories.ErrTournamentInUse)

	require.NoError(t, s.Sets().ReplaceForMatch(ctx, nil, m.ID, []models.Set{{Player1Score: 11, Player2Score: 3}}))
	require.NoError(t, s.Matches().DeleteByTournament(ctx, nil, tour.ID))
	sets, err := s.Sets().ListByMatch(ctx, nil, m.ID)
	require.NoError(t, err)
	assert.Empty(t, sets)

	require.NoError(t, s.Tournaments().Delete(ctx, nil, tour.ID))
	_, err = s.Tournaments().GetByID(ctx, nil, tour.ID)
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}

func TestMatchFilters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := newPlayer(t, s, "a", 0)
	b := newPlayer(t, s, "b", 0)
	tour := &models.Tournament{Name: "cup", Format: models.FormatElimination}
	require.NoError(t, s.Tournaments().Create(ctx, nil, tour))

	matches := []*models.Match{
		{TournamentID: tour.ID, Player1ID: a.ID, Player2ID: &b.ID, Round: 2, Phase: models.PhaseMain, Status: models.MatchStatusPending},
		{TournamentID: tour.ID, Player1ID: a.ID, Player2ID: &b.ID, Round: 1, Phase: models.PhaseMain, Status: models.MatchStatusFinished},
		{TournamentID: tour.ID, Player1ID: b.ID, Player2ID: &a.ID, Round: 1, Phase: models.PhaseMain, Status: models.MatchStatusPending},
	}
	require.NoError(t, s.Matches().BatchCreate(ctx, nil, matches))

	all, err := s.Matches().ListByTournament(ctx, nil, tour.ID, repositories.MatchFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{matches[1].ID, matches[2].ID, matches[0].ID}, []int{all[0].ID, all[1].ID, all[2].ID})

	round := 1
	status := models.MatchStatusPending
	filtered, err := s.Matches().ListByTournament(ctx, nil, tour.ID, repositories.MatchFilter{Round: &round, Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, matches[2].ID, filtered[0].ID)

	err = s.Matches().BatchCreate(ctx, nil, []*models.Match{{TournamentID: 999, Player1ID: a.ID}})
	assert.ErrorIs(t, err, repositories.ErrMatchTournamentInvalid)
}

func TestResultConflicts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := newPlayer(t, s, "a", 0)
	b := newPlayer(t, s, "b", 0)

	require.NoError(t, s.Results().BatchCreate(ctx, nil, []*models.TournamentResult{
		{TournamentID: 1, PlayerID: a.ID, Position: 1, PointsAwarded: 100},
	}))
	err := s.Results().BatchCreate(ctx, nil, []*models.TournamentResult{
		{TournamentID: 1, PlayerID: b.ID, Position: 1, PointsAwarded: 75},
	})
	assert.ErrorIs(t, err, repositories.ErrResultConflict)
}

func TestWithinTxHonoursCancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(repositories.SQLExecutor) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}
