package brackets

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentRoom(t *testing.T) {
	assert.Equal(t, "tournament_42", TournamentRoom(42))
}

func TestHubEmitReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	watcher := &Client{Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom(1)}
	other := &Client{Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom(2)}
	hub.Register <- watcher
	hub.Register <- other
	require.Eventually(t, func() bool {
		return hub.RoomSize(TournamentRoom(1)) == 1 && hub.RoomSize(TournamentRoom(2)) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Emit(TournamentRoom(1), "match_updated", map[string]int{"match_id": 7})

	select {
	case raw := <-watcher.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "match_updated", msg.Type)
		assert.Equal(t, TournamentRoom(1), msg.RoomID)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.SentAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, other.Send)

	hub.Unregister <- watcher
	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom(1)) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-watcher.Send
	assert.False(t, open)
}

func TestHubEmitSkipsFullClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{Hub: hub, Send: make(chan []byte), Room: TournamentRoom(3)}
	hub.Register <- slow
	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom(3)) == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.Emit(TournamentRoom(3), "match_started", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a client that is not reading")
	}
}
