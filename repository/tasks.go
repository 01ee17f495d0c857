package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SolvedTasks provides access to the archive of completed puzzles.
type SolvedTasks struct {
	db *sqlx.DB
}

// NewSolvedTasks builds the solved tasks repository.
func NewSolvedTasks(db *sqlx.DB) *SolvedTasks { return &SolvedTasks{db: db} }

// Add archives one solved puzzle for the user.
func (r *SolvedTasks) Add(ctx context.Context, userID int64, taskText string) error {
	const q = `INSERT INTO solved_tasks (user_id, task_text) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, q, userID, taskText); err != nil {
		return fmt.Errorf("insert solved task: %w", err)
	}
	return nil
}

// CountByUser returns how many puzzles the user has solved.
func (r *SolvedTasks) CountByUser(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM solved_tasks WHERE user_id = $1`
	var n int
	if err := r.db.GetContext(ctx, &n, q, userID); err != nil {
		return 0, fmt.Errorf("count solved tasks: %w", err)
	}
	return n, nil
}
