package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/lib/pq"
)

var ErrPlayerNotFound = errors.New("player not found")

// rankingsLockKey identifies the transaction-scoped advisory lock guarding point updates.
const rankingsLockKey = 7_311_001

type ListPlayersFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error)
	// List returns players in ranking order: points desc, then id.
	List(ctx context.Context, exec SQLExecutor, filter ListPlayersFilter) ([]*models.Player, error)
	// LockRankings serializes transactions that change points or rankings. It must be
	// called inside a transaction before AddPoints, Create or RecomputeRankings and is
	// released on commit or rollback.
	LockRankings(ctx context.Context, exec SQLExecutor) error
	AddPoints(ctx context.Context, exec SQLExecutor, id int, delta int) error
	// RecomputeRankings rewrites the ranking of every player from their points in one pass.
	RecomputeRankings(ctx context.Context, exec SQLExecutor) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, name, points, ranking, active, created_at`

func (r *postgresPlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	var ranking sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Points, &ranking, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	if ranking.Valid {
		rank := int(ranking.Int64)
		p.Ranking = &rank
	}
	return &p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	query := `
		INSERT INTO players (name, points, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.getExecutor(exec).QueryRowContext(ctx, query, p.Name, p.Points, p.Active).Scan(&p.ID, &p.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return r.scanPlayer(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.Player, error) {
	if len(ids) == 0 {
		return []*models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresPlayerRepository) List(ctx context.Context, exec SQLExecutor, filter ListPlayersFilter) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players`
	args := []interface{}{}
	if filter.ActiveOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY points DESC, id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresPlayerRepository) collect(rows *sql.Rows) ([]*models.Player, error) {
	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) LockRankings(ctx context.Context, exec SQLExecutor) error {
	if exec == nil {
		return errors.New("rankings lock requires a transaction")
	}
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, rankingsLockKey); err != nil {
		return fmt.Errorf("failed to lock rankings: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) AddPoints(ctx context.Context, exec SQLExecutor, id int, delta int) error {
	query := `UPDATE players SET points = points + $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to add %d points to player %d: %w", delta, id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) RecomputeRankings(ctx context.Context, exec SQLExecutor) error {
	query := `
		UPDATE players p SET ranking = ranked.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY points DESC, id ASC) AS rn
			FROM players
		) ranked
		WHERE p.id = ranked.id`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to recompute player rankings: %w", err)
	}
	return nil
}
