package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so every repository call can join
// the caller's transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn inside a single transaction. fn's error (or a panic) rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type postgresTransactor struct {
	db *sql.DB
}

func NewPostgresTransactor(db *sql.DB) Transactor {
	return &postgresTransactor{db: db}
}

func (t *postgresTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("Error during rollback: %v. Original error: %v", rbErr, txErr)
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Repositories bundles every entity store the engine works with.
type Repositories struct {
	Players     PlayerRepository
	Tournaments TournamentRepository
	Matches     MatchRepository
	Sets        SetRepository
	Groups      GroupRepository
	Results     ResultRepository
}

func NewPostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Players:     NewPostgresPlayerRepository(db),
		Tournaments: NewPostgresTournamentRepository(db),
		Matches:     NewPostgresMatchRepository(db),
		Sets:        NewPostgresSetRepository(db),
		Groups:      NewPostgresGroupRepository(db),
		Results:     NewPostgresResultRepository(db),
	}
}
