package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tt-tournament/models"
)

type GroupRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, groups []*models.Group) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) BatchCreate(ctx context.Context, exec SQLExecutor, groups []*models.Group) error {
	executor := r.getExecutor(exec)
	for _, g := range groups {
		err := executor.QueryRowContext(ctx,
			`INSERT INTO tournament_groups (tournament_id, name) VALUES ($1, $2) RETURNING id, created_at`,
			g.TournamentID, g.Name,
		).Scan(&g.ID, &g.CreatedAt)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for group %s: %w", g.Name, err)
		}
		for pos, playerID := range g.PlayerIDs {
			_, err := executor.ExecContext(ctx,
				`INSERT INTO group_members (group_id, player_id, position) VALUES ($1, $2, $3)`,
				g.ID, playerID, pos+1,
			)
			if err != nil {
				return fmt.Errorf("BatchCreate failed adding player %d to group %s: %w", playerID, g.Name, err)
			}
		}
	}
	return nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.tournament_id, g.name, g.created_at, gm.player_id
		FROM tournament_groups g
		LEFT JOIN group_members gm ON gm.group_id = g.id
		WHERE g.tournament_id = $1
		ORDER BY g.id ASC, gm.position ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	var current *models.Group
	for rows.Next() {
		var g models.Group
		var playerID sql.NullInt64
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.CreatedAt, &playerID); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		if current == nil || current.ID != g.ID {
			g.PlayerIDs = []int{}
			current = &g
			groups = append(groups, current)
		}
		if playerID.Valid {
			current.PlayerIDs = append(current.PlayerIDs, int(playerID.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournament_groups WHERE tournament_id = $1`, tournamentID)
	return err
}
