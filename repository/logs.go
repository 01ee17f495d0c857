package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Logs provides access to the per-user activity log table.
type Logs struct {
	db *sqlx.DB
}

// NewLogs builds the logs repository.
func NewLogs(db *sqlx.DB) *Logs { return &Logs{db: db} }

// Add appends one activity entry for the user.
func (r *Logs) Add(ctx context.Context, userID int64, text string) error {
	const q = `INSERT INTO logs (user_id, log_text) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, q, userID, text); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// Recent returns the user's latest activity entries, newest first.
func (r *Logs) Recent(ctx context.Context, userID int64, limit int) ([]string, error) {
	const q = `SELECT log_text FROM logs WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	entries := []string{}
	if err := r.db.SelectContext(ctx, &entries, q, userID, limit); err != nil {
		return nil, fmt.Errorf("select logs: %w", err)
	}
	return entries, nil
}
