package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBracketFlipsTournamentToInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "A", "B", "C", "D")
	tour := f.createTournament(t, models.FormatElimination, 5)

	res, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids, SeedingMode: SeedingAutomatic})
	require.NoError(t, err)
	assert.Equal(t, 2, res.MatchesCreated)

	got, err := f.tournaments.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, brackets.TournamentRoom(tour.ID), ev.Topic)
	assert.Equal(t, EventBracketGenerated, ev.Event)
	assert.Equal(t, BracketGeneratedPayload{TournamentID: tour.ID, MatchesCreated: 2}, ev.Payload)
}

func TestGenerateBracketErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "A", "B", "C")

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := f.brackets.GenerateBracket(ctx, 9999, GenerateBracketRequest{PlayerIDs: ids})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("generated twice", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids})
		require.NoError(t, err)
		_, err = f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.ErrorIs(t, err, ErrTournamentNotPending)
	})

	t.Run("single player", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids[:1]})
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	})

	t.Run("unknown player", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: append([]int{4242}, ids...)})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("unknown player in manual positions", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		req := seedInOrder(ids[0], ids[1])
		req.PlayerIDs = ids[:2]
		req.ManualPositions[1].PlayerID = 4242
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, req)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate player", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: []int{ids[0], ids[1], ids[0]}})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("manual position taken", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		req := seedInOrder(ids[0], ids[1])
		req.ManualPositions[1].Position = 1
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, req)
		assert.ErrorIs(t, err, ErrInvalidSeeding)
	})

	t.Run("manual without positions", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids, SeedingMode: SeedingManual})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown seeding mode", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids, SeedingMode: "by_rating"})
		assert.ErrorIs(t, err, ErrInvalidSeedingMode)
	})

	t.Run("double elimination", func(t *testing.T) {
		tour := f.createTournament(t, models.FormatDoubleElimination, 5)
		_, err := f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.ErrorIs(t, err, ErrFormatNotSupported)

		got, err := f.tournaments.GetTournament(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("over capacity", func(t *testing.T) {
		tour, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Capped", Format: "elimination", MaxPlayers: 2})
		require.NoError(t, err)
		_, err = f.brackets.GenerateBracket(ctx, tour.ID, GenerateBracketRequest{PlayerIDs: ids})
		assert.ErrorIs(t, err, ErrTooManyPlayers)
	})
}

func TestStartMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "A", "B", "C")
	tour := f.createTournament(t, models.FormatElimination, 5)
	res, err := f.brackets.GenerateBracket(ctx, tour.ID, seedInOrder(ids...))
	require.NoError(t, err)
	real, bye := res.Matches[0], res.Matches[1]

	started, err := f.matches.StartMatch(ctx, real.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, started.Status)
	assert.Contains(t, f.notifier.names(), EventMatchStarted)

	_, err = f.matches.StartMatch(ctx, real.ID)
	assert.ErrorIs(t, err, ErrMatchNotPending)

	_, err = f.matches.StartMatch(ctx, bye.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.matches.StartMatch(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitResultErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "A", "B", "C", "D")
	tour := f.createTournament(t, models.FormatElimination, 5)
	res, err := f.brackets.GenerateBracket(ctx, tour.ID, seedInOrder(ids...))
	require.NoError(t, err)
	m := res.Matches[0]

	_, err = f.matches.SubmitResult(ctx, 9999, ResultSubmission{WinnerID: ids[0], Sets: sweep(true)})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = f.matches.SubmitResult(ctx, m.ID, ResultSubmission{WinnerID: ids[0], Sets: sweep(true), Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	_, err = f.matches.SubmitResult(ctx, m.ID, ResultSubmission{WinnerID: ids[1], Sets: sweep(true)})
	assert.ErrorIs(t, err, ErrConflict)

	f.win(t, m, ids[0])
	_, err = f.matches.SubmitResult(ctx, m.ID, ResultSubmission{WinnerID: ids[0], Sets: sweep(true)})
	assert.ErrorIs(t, err, ErrMatchAlreadyFinished)
}

func TestSubmitResultAfterExplicitFinalizeIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := f.createPlayers(t, "A", "B", "C", "D")
	tour := f.createTournament(t, models.FormatElimination, 5)
	res, err := f.brackets.GenerateBracket(ctx, tour.ID, seedInOrder(ids...))
	require.NoError(t, err)

	_, err = f.tournaments.FinalizeTournament(ctx, tour.ID)
	require.NoError(t, err)

	_, err = f.matches.SubmitResult(ctx, res.Matches[0].ID, ResultSubmission{WinnerID: ids[0], Sets: sweep(true)})
	assert.ErrorIs(t, err, ErrTournamentNotInProgress)
}
