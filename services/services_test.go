package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/Dosada05/tt-tournament/repositories/memory"
	"github.com/Dosada05/tt-tournament/storage"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Topic   string
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Emit(topic, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Topic: topic, Event: event, Payload: payload})
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := make([]string, 0, len(n.events))
	for _, e := range n.events {
		names = append(names, e.Event)
	}
	return names
}

type fixture struct {
	store       *memory.Store
	repos       repositories.Repositories
	notifier    *recordingNotifier
	uploader    *storage.MemoryUploader
	brackets    BracketService
	matches     MatchService
	tournaments TournamentService
	players     PlayerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	notifier := &recordingNotifier{}
	uploader := storage.NewMemoryUploader()
	return &fixture{
		store:       store,
		repos:       repos,
		notifier:    notifier,
		uploader:    uploader,
		brackets:    NewBracketService(store, repos, notifier, nil),
		matches:     NewMatchService(store, repos, notifier, uploader, nil),
		tournaments: NewTournamentService(store, repos, notifier, uploader, nil),
		players:     NewPlayerService(store, repos, nil),
	}
}

func (f *fixture) createPlayers(t *testing.T, names ...string) []int {
	t.Helper()
	ids := make([]int, 0, len(names))
	for _, name := range names {
		p, err := f.players.CreatePlayer(context.Background(), CreatePlayerInput{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	return ids
}

func (f *fixture) createTournament(t *testing.T, format models.TournamentFormat, bestOf int) *models.Tournament {
	t.Helper()
	tour, err := f.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:   fmt.Sprintf("%s cup %d", format, tournamentSeq()),
		Format: string(format),
		BestOf: bestOf,
	})
	require.NoError(t, err)
	return tour
}

var (
	seqMu sync.Mutex
	seq   int
)

func tournamentSeq() int {
	seqMu.Lock()
	defer seqMu.Unlock()
	seq++
	return seq
}

// seedInOrder places players at positions 1..n in the order given.
func seedInOrder(playerIDs ...int) GenerateBracketRequest {
	positions := make([]brackets.ManualPosition, 0, len(playerIDs))
	for i, id := range playerIDs {
		positions = append(positions, brackets.ManualPosition{Position: i + 1, PlayerID: id})
	}
	return GenerateBracketRequest{SeedingMode: SeedingManual, ManualPositions: positions}
}

// sweep is a straight-sets win for the given side in a best-of-5 match.
func sweep(winnerIsPlayer1 bool) []SetScore {
	set := SetScore{Player1Score: 11, Player2Score: 6}
	if !winnerIsPlayer1 {
		set = SetScore{Player1Score: 6, Player2Score: 11}
	}
	return []SetScore{set, set, set}
}

// win submits a 3-0 result for winnerID.
func (f *fixture) win(t *testing.T, m *models.Match, winnerID int) *models.Match {
	t.Helper()
	updated, err := f.matches.SubmitResult(context.Background(), m.ID, ResultSubmission{
		WinnerID: winnerID,
		Sets:     sweep(m.Player1ID == winnerID),
	})
	require.NoError(t, err)
	return updated
}

func (f *fixture) round(t *testing.T, tournamentID, round int) []*models.Match {
	t.Helper()
	matches, err := f.matches.ListMatchesByTournament(context.Background(), tournamentID, repositories.MatchFilter{Round: &round})
	require.NoError(t, err)
	return matches
}

func (f *fixture) player(t *testing.T, id int) *models.Player {
	t.Helper()
	p, err := f.repos.Players.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	return p
}
