package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
)

type SetRepository interface {
	// ReplaceForMatch deletes every stored set of the match and inserts sets numbered 1..n.
	ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, sets []models.Set) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Set, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Set, error)
}

type postgresSetRepository struct {
	db *sql.DB
}

func NewPostgresSetRepository(db *sql.DB) SetRepository {
	return &postgresSetRepository{db: db}
}

func (r *postgresSetRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSetRepository) ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, sets []models.Set) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM match_sets WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to clear sets of match %d: %w", matchID, err)
	}

	query := `
		INSERT INTO match_sets (match_id, number, player1_score, player2_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for i := range sets {
		sets[i].MatchID = matchID
		sets[i].Number = i + 1
		err := executor.QueryRowContext(ctx, query, matchID, sets[i].Number, sets[i].Player1Score, sets[i].Player2Score).Scan(&sets[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert set %d of match %d: %w", i+1, matchID, err)
		}
	}
	return nil
}

func (r *postgresSetRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Set, error) {
	query := `
		SELECT id, match_id, number, player1_score, player2_score
		FROM match_sets
		WHERE match_id = $1
		ORDER BY number ASC`
	return r.query(ctx, exec, query, matchID)
}

func (r *postgresSetRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Set, error) {
	query := `
		SELECT s.id, s.match_id, s.number, s.player1_score, s.player2_score
		FROM match_sets s
		JOIN matches m ON m.id = s.match_id
		WHERE m.tournament_id = $1
		ORDER BY s.match_id ASC, s.number ASC`
	return r.query(ctx, exec, query, tournamentID)
}

func (r *postgresSetRepository) query(ctx context.Context, exec SQLExecutor, query string, arg int) ([]models.Set, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets: %w", err)
	}
	defer rows.Close()

	sets := make([]models.Set, 0)
	for rows.Next() {
		var s models.Set
		if err := rows.Scan(&s.ID, &s.MatchID, &s.Number, &s.Player1Score, &s.Player2Score); err != nil {
			return nil, fmt.Errorf("failed to scan set row: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during set rows iteration: %w", err)
	}
	return sets, nil
}
