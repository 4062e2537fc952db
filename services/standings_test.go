package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedMatch(id, p1, p2, winner, p1Sets, p2Sets int) *models.Match {
	return &models.Match{
		ID:          id,
		Player1ID:   p1,
		Player2ID:   &p2,
		Status:      models.MatchStatusFinished,
		WinnerID:    &winner,
		Player1Sets: p1Sets,
		Player2Sets: p2Sets,
	}
}

func TestPointsForPosition(t *testing.T) {
	want := map[int]int{1: 100, 2: 75, 3: 50, 4: 25, 5: 10, 6: 10, 7: 5, 8: 5, 9: 1, 32: 1}
	for position, points := range want {
		assert.Equal(t, points, PointsForPosition(position), "position %d", position)
	}
}

func TestComputeStandingsWinsThenInputOrder(t *testing.T) {
	const a, b, c, d = 1, 2, 3, 4
	// Wins: a=3, b=2, c=2, d=1. b and c also tie on set differential.
	matches := []*models.Match{
		finishedMatch(1, a, b, a, 3, 0),
		finishedMatch(2, c, d, c, 3, 0),
		finishedMatch(3, a, c, a, 3, 0),
		finishedMatch(4, b, d, b, 3, 0),
		finishedMatch(5, a, d, a, 3, 0),
		finishedMatch(6, b, c, b, 3, 0),
		finishedMatch(7, c, b, c, 3, 0),
		finishedMatch(8, d, a, d, 3, 0),
	}

	standings := ComputeStandings(matches, nil)
	require.Len(t, standings, 4)

	var ids, wins, positions, points []int
	total := 0
	for _, s := range standings {
		ids = append(ids, s.PlayerID)
		wins = append(wins, s.Wins)
		positions = append(positions, s.Position)
		points = append(points, s.Points)
		total += s.Points
	}
	assert.Equal(t, []int{a, b, c, d}, ids)
	assert.Equal(t, []int{3, 2, 2, 1}, wins)
	assert.Equal(t, []int{1, 2, 3, 4}, positions)
	assert.Equal(t, []int{100, 75, 50, 25}, points)
	assert.Equal(t, 250, total)
}

func TestComputeStandingsSetDifferentialBreaksTies(t *testing.T) {
	const a, b, c, d = 1, 2, 3, 4
	matches := []*models.Match{
		finishedMatch(1, a, b, a, 3, 2),
		finishedMatch(2, c, d, c, 3, 0),
	}
	standings := ComputeStandings(matches, nil)
	require.Len(t, standings, 4)
	assert.Equal(t, c, standings[0].PlayerID, "3-0 beats 3-2 on set differential")
	assert.Equal(t, a, standings[1].PlayerID)
	assert.Equal(t, b, standings[2].PlayerID)
	assert.Equal(t, d, standings[3].PlayerID)
}

func TestComputeStandingsCountsByesAndExtraPlayers(t *testing.T) {
	winner := 5
	bye := &models.Match{ID: 1, Player1ID: 5, IsBye: true, Status: models.MatchStatusFinished, WinnerID: &winner, Player1Sets: 1}
	standings := ComputeStandings([]*models.Match{bye}, []int{7, 5, 8})
	require.Len(t, standings, 3)
	assert.Equal(t, Standing{PlayerID: 5, Wins: 1, SetDiff: 0, Position: 1, Points: 100}, standings[0])
	assert.Equal(t, 7, standings[1].PlayerID)
	assert.Equal(t, 8, standings[2].PlayerID)
}

func TestComputeStandingsUsesCreationOrderNotSliceOrder(t *testing.T) {
	matches := []*models.Match{
		finishedMatch(9, 3, 4, 3, 3, 0),
		finishedMatch(2, 1, 2, 1, 3, 0),
	}
	standings := ComputeStandings(matches, nil)
	require.Len(t, standings, 4)
	assert.Equal(t, []int{1, 3, 2, 4}, []int{standings[0].PlayerID, standings[1].PlayerID, standings[2].PlayerID, standings[3].PlayerID})
}

func TestFinalizeTournamentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "Ana", "Bo", "Cy", "Di")
	tour := f.createTournament(t, models.FormatElimination, 5)
	_, err := f.brackets.GenerateBracket(ctx, tour.ID, seedInOrder(ids...))
	require.NoError(t, err)

	for _, m := range f.round(t, tour.ID, 1) {
		f.win(t, m, m.Player1ID)
	}

	first, err := f.tournaments.FinalizeTournament(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, first, 4)
	pointsAfterFirst := map[int]int{}
	for _, id := range ids {
		pointsAfterFirst[id] = f.player(t, id).Points
	}

	second, err := f.tournaments.FinalizeTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, second, 4)
	for _, id := range ids {
		assert.Equal(t, pointsAfterFirst[id], f.player(t, id).Points, "player %d", id)
	}

	finished := 0
	for _, name := range f.notifier.names() {
		if name == EventTournamentFinished {
			finished++
		}
	}
	assert.Equal(t, 1, finished)
}

func TestFinalizePendingTournamentIsRejected(t *testing.T) {
	f := newFixture(t)
	tour := f.createTournament(t, models.FormatElimination, 5)
	_, err := f.tournaments.FinalizeTournament(context.Background(), tour.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

// orderedPlayers records the order of writes that touch points or rankings.
type orderedPlayers struct {
	repositories.PlayerRepository
	mu  sync.Mutex
	ops []string
}

func (p *orderedPlayers) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, op)
}

func (p *orderedPlayers) take() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := p.ops
	p.ops = nil
	return ops
}

func (p *orderedPlayers) LockRankings(ctx context.Context, exec repositories.SQLExecutor) error {
	p.record("lock")
	return p.PlayerRepository.LockRankings(ctx, exec)
}

func (p *orderedPlayers) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	p.record("create")
	return p.PlayerRepository.Create(ctx, exec, player)
}

func (p *orderedPlayers) AddPoints(ctx context.Context, exec repositories.SQLExecutor, id int, delta int) error {
	p.record("add")
	return p.PlayerRepository.AddPoints(ctx, exec, id, delta)
}

func (p *orderedPlayers) RecomputeRankings(ctx context.Context, exec repositories.SQLExecutor) error {
	p.record("recompute")
	return p.PlayerRepository.RecomputeRankings(ctx, exec)
}

func TestPointWritesTakeRankingsLockFirst(t *testing.T) {
	f := newFixture(t)
	players := &orderedPlayers{PlayerRepository: f.repos.Players}
	f.repos.Players = players
	f.brackets = NewBracketService(f.store, f.repos, f.notifier, nil)
	f.matches = NewMatchService(f.store, f.repos, f.notifier, f.uploader, nil)
	f.tournaments = NewTournamentService(f.store, f.repos, f.notifier, f.uploader, nil)
	f.players = NewPlayerService(f.store, f.repos, nil)
	ctx := context.Background()

	ids := f.createPlayers(t, "A")
	assert.Equal(t, []string{"lock", "create", "recompute"}, players.take())
	ids = append(ids, f.createPlayers(t, "B")...)
	players.take()

	tour := f.createTournament(t, models.FormatElimination, 5)
	_, err := f.brackets.GenerateBracket(ctx, tour.ID, seedInOrder(ids...))
	require.NoError(t, err)
	assert.Empty(t, players.take())

	f.win(t, f.round(t, tour.ID, 1)[0], ids[0])
	assert.Equal(t, []string{"lock", "add", "add", "recompute"}, players.take())

	require.NoError(t, f.tournaments.DeleteTournament(ctx, tour.ID, true))
	assert.Equal(t, []string{"lock", "add", "add", "recompute"}, players.take())
	assert.Equal(t, 0, f.player(t, ids[0]).Points)
}
