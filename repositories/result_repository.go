package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
	"github.com/lib/pq"
)

var ErrResultConflict = errors.New("tournament result already recorded for player or position")

type ResultRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.TournamentResult) error
	// ListByTournament returns results ordered by position.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentResult, error)
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.TournamentResult, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.TournamentResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_results (tournament_id, player_id, position, points_awarded)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	for _, res := range results {
		err := executor.QueryRowContext(ctx, query, res.TournamentID, res.PlayerID, res.Position, res.PointsAwarded).
			Scan(&res.ID, &res.CreatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return fmt.Errorf("%w: player %d position %d", ErrResultConflict, res.PlayerID, res.Position)
			}
			return fmt.Errorf("BatchCreate failed for player %d: %w", res.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.TournamentResult, error) {
	query := `
		SELECT id, tournament_id, player_id, position, points_awarded, created_at
		FROM tournament_results
		WHERE tournament_id = $1
		ORDER BY position ASC`
	return r.query(ctx, exec, query, tournamentID)
}

func (r *postgresResultRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.TournamentResult, error) {
	query := `
		SELECT id, tournament_id, player_id, position, points_awarded, created_at
		FROM tournament_results
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.query(ctx, exec, query, playerID)
}

func (r *postgresResultRepository) query(ctx context.Context, exec SQLExecutor, query string, arg int) ([]*models.TournamentResult, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.TournamentResult, 0)
	for rows.Next() {
		var res models.TournamentResult
		if err := rows.Scan(&res.ID, &res.TournamentID, &res.PlayerID, &res.Position, &res.PointsAwarded, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament result: %w", err)
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresResultRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournament_results WHERE tournament_id = $1`, tournamentID)
	return err
}
