package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/Dosada05/tt-tournament/repositories"
)

type playerRepo struct{ s *Store }

func (r *playerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = r.s.now()
	r.s.players[p.ID] = copyPlayer(p)
	return nil
}

func (r *playerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (r *playerRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	players := make([]*models.Player, 0, len(ids))
	for _, id := range sortedKeys(r.s.players) {
		if slices.Contains(ids, id) {
			players = append(players, copyPlayer(r.s.players[id]))
		}
	}
	return players, nil
}

func (r *playerRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.ListPlayersFilter) ([]*models.Player, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	players := make([]*models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		players = append(players, copyPlayer(p))
	}
	sortByPoints(players)

	if filter.Offset > 0 {
		players = players[min(filter.Offset, len(players)):]
	}
	if filter.Limit > 0 && len(players) > filter.Limit {
		players = players[:filter.Limit]
	}
	return players, nil
}

func sortByPoints(players []*models.Player) {
	slices.SortFunc(players, func(a, b *models.Player) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// LockRankings is a no-op: WithinTx already serializes every transaction on the store.
func (r *playerRepo) LockRankings(_ context.Context, _ repositories.SQLExecutor) error {
	return nil
}

func (r *playerRepo) AddPoints(_ context.Context, _ repositories.SQLExecutor, id int, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Points += delta
	return nil
}

func (r *playerRepo) RecomputeRankings(_ context.Context, _ repositories.SQLExecutor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	players := make([]*models.Player, 0, len(r.s.players))
	for _, p := range r.s.players {
		players = append(players, p)
	}
	sortByPoints(players)
	for i, p := range players {
		rank := i + 1
		p.Ranking = &rank
	}
	return nil
}

type tournamentRepo struct{ s *Store }

func (r *tournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = r.s.now()
	c := *t
	r.s.tournaments[t.ID] = &c
	return nil
}

func (r *tournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	return &c, nil
}

// GetByIDForUpdate relies on WithinTx's store-wide lock for exclusivity.
func (r *tournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *tournamentRepo) List(_ context.Context, _ repositories.SQLExecutor, filter repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := sortedKeys(r.s.tournaments)
	slices.Reverse(keys)
	tournaments := make([]*models.Tournament, 0, len(keys))
	for _, id := range keys {
		t := r.s.tournaments[id]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		c := *t
		tournaments = append(tournaments, &c)
	}
	if filter.Offset > 0 {
		tournaments = tournaments[min(filter.Offset, len(tournaments)):]
	}
	if filter.Limit > 0 && len(tournaments) > filter.Limit {
		tournaments = tournaments[:filter.Limit]
	}
	return tournaments, nil
}

func (r *tournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *tournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, m := range r.s.matches {
		if m.TournamentID == id {
			return repositories.ErrTournamentInUse
		}
	}
	for _, res := range r.s.results {
		if res.TournamentID == id {
			return repositories.ErrTournamentInUse
		}
	}
	delete(r.s.tournaments, id)
	return nil
}

type matchRepo struct{ s *Store }

func (r *matchRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range matches {
		if _, ok := r.s.tournaments[m.TournamentID]; !ok {
			return fmt.Errorf("BatchCreate failed for round %d match of player %d: %w", m.Round, m.Player1ID, repositories.ErrMatchTournamentInvalid)
		}
		m.ID = r.s.id()
		m.CreatedAt = r.s.now()
		r.s.matches[m.ID] = copyMatch(m)
	}
	return nil
}

func (r *matchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *matchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matches := make([]*models.Match, 0)
	for _, id := range sortedKeys(r.s.matches) {
		m := r.s.matches[id]
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Phase != nil && m.Phase != *filter.Phase {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		matches = append(matches, copyMatch(m))
	}
	slices.SortStableFunc(matches, func(a, b *models.Match) int {
		return cmp.Compare(a.Round, b.Round)
	})
	return matches, nil
}

func (r *matchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Status = m.Status
	stored.Player1Sets = m.Player1Sets
	stored.Player2Sets = m.Player2Sets
	stored.WinnerID = copyIntPtr(m.WinnerID)
	return nil
}

func (r *matchRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Status = status
	return nil
}

func (r *matchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
			delete(r.s.sets, id)
		}
	}
	return nil
}

type setRepo struct{ s *Store }

func (r *setRepo) ReplaceForMatch(_ context.Context, _ repositories.SQLExecutor, matchID int, sets []models.Set) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[matchID]; !ok {
		return repositories.ErrMatchNotFound
	}
	stored := make([]models.Set, len(sets))
	for i := range sets {
		sets[i].ID = r.s.id()
		sets[i].MatchID = matchID
		sets[i].Number = i + 1
		stored[i] = sets[i]
	}
	r.s.sets[matchID] = stored
	return nil
}

func (r *setRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.Set, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.sets[matchID]), nil
}

func (r *setRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Set, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sets := make([]models.Set, 0)
	for _, id := range sortedKeys(r.s.matches) {
		if r.s.matches[id].TournamentID == tournamentID {
			sets = append(sets, r.s.sets[id]...)
		}
	}
	return sets, nil
}

type groupRepo struct{ s *Store }

func (r *groupRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, groups []*models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range groups {
		g.ID = r.s.id()
		g.CreatedAt = r.s.now()
		r.s.groups[g.ID] = copyGroup(g)
	}
	return nil
}

func (r *groupRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	groups := make([]*models.Group, 0)
	for _, id := range sortedKeys(r.s.groups) {
		if g := r.s.groups[id]; g.TournamentID == tournamentID {
			groups = append(groups, copyGroup(g))
		}
	}
	return groups, nil
}

func (r *groupRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.groups {
		if g.TournamentID == tournamentID {
			delete(r.s.groups, id)
		}
	}
	return nil
}

type resultRepo struct{ s *Store }

func (r *resultRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, results []*models.TournamentResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range results {
		for _, existing := range r.s.results {
			if existing.TournamentID == res.TournamentID &&
				(existing.PlayerID == res.PlayerID || existing.Position == res.Position) {
				return fmt.Errorf("%w: player %d position %d", repositories.ErrResultConflict, res.PlayerID, res.Position)
			}
		}
		res.ID = r.s.id()
		res.CreatedAt = r.s.now()
		c := *res
		c.Player = nil
		r.s.results[res.ID] = &c
	}
	return nil
}

func (r *resultRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.TournamentResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	results := r.filter(func(res *models.TournamentResult) bool { return res.TournamentID == tournamentID })
	slices.SortFunc(results, func(a, b *models.TournamentResult) int { return cmp.Compare(a.Position, b.Position) })
	return results, nil
}

func (r *resultRepo) ListByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID int) ([]*models.TournamentResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	results := r.filter(func(res *models.TournamentResult) bool { return res.PlayerID == playerID })
	slices.Reverse(results)
	return results, nil
}

// filter must be called with mu held.
func (r *resultRepo) filter(keep func(*models.TournamentResult) bool) []*models.TournamentResult {
	results := make([]*models.TournamentResult, 0)
	for _, id := range sortedKeys(r.s.results) {
		if res := r.s.results[id]; keep(res) {
			c := *res
			results = append(results, &c)
		}
	}
	return results
}

func (r *resultRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, res := range r.s.results {
		if res.TournamentID == tournamentID {
			delete(r.s.results, id)
		}
	}
	return nil
}
