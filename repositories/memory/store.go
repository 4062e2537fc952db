// Package memory implements the repository interfaces on top of in-process maps.
//
// WithinTx serializes callers with a single lock but does not roll back: a failing
// transaction leaves whatever it already wrote. It backs the test suite and the
// STORE_DRIVER=memory mode, not production deployments.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	nextID      int
	players     map[int]*models.Player
	tournaments map[int]*models.Tournament
	matches     map[int]*models.Match
	sets        map[int][]models.Set
	groups      map[int]*models.Group
	results     map[int]*models.TournamentResult
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		players:     make(map[int]*models.Player),
		tournaments: make(map[int]*models.Tournament),
		matches:     make(map[int]*models.Match),
		sets:        make(map[int][]models.Set),
		groups:      make(map[int]*models.Group),
		results:     make(map[int]*models.TournamentResult),
		now:         time.Now,
	}
}

// WithinTx runs fn while holding the store-wide transaction lock.
func (s *Store) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(nil)
}

func (s *Store) Players() repositories.PlayerRepository         { return &playerRepo{s} }
func (s *Store) Tournaments() repositories.TournamentRepository { return &tournamentRepo{s} }
func (s *Store) Matches() repositories.MatchRepository          { return &matchRepo{s} }
func (s *Store) Sets() repositories.SetRepository               { return &setRepo{s} }
func (s *Store) Groups() repositories.GroupRepository           { return &groupRepo{s} }
func (s *Store) Results() repositories.ResultRepository         { return &resultRepo{s} }

// id must be called with mu held for writing.
func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// sortedKeys returns map keys in ascending order; ids grow monotonically, so this is
// creation order.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyPlayer(p *models.Player) *models.Player {
	c := *p
	c.Ranking = copyIntPtr(p.Ranking)
	return &c
}

func copyMatch(m *models.Match) *models.Match {
	c := *m
	c.Player2ID = copyIntPtr(m.Player2ID)
	c.WinnerID = copyIntPtr(m.WinnerID)
	c.Sets = nil
	return &c
}

func copyGroup(g *models.Group) *models.Group {
	c := *g
	c.PlayerIDs = slices.Clone(g.PlayerIDs)
	return &c
}

// Repositories returns every repository backed by this store.
func (s *Store) Repositories() repositories.Repositories {
	return repositories.Repositories{
		Players:     s.Players(),
		Tournaments: s.Tournaments(),
		Matches:     s.Matches(),
		Sets:        s.Sets(),
		Groups:      s.Groups(),
		Results:     s.Results(),
	}
}
