package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// User is a registered player. ID is the Telegram user ID.
type User struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"full_name"`
	Hobby     string    `db:"hobby"`
	Rating    float64   `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

// LeaderboardEntry is one row of the rating leaderboard.
type LeaderboardEntry struct {
	Position int     `db:"position"`
	FullName string  `db:"full_name"`
	Rating   float64 `db:"rating"`
}

// Users provides access to the users table.
type Users struct {
	db *sqlx.DB
}

// NewUsers builds the users repository.
func NewUsers(db *sqlx.DB) *Users { return &Users{db: db} }

// Create registers a new user with a zero rating.
func (r *Users) Create(ctx context.Context, id int64, fullName, hobby string) error {
	const q = `INSERT INTO users (id, full_name, hobby) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, q, id, fullName, hobby); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Exists reports whether the user is registered.
func (r *Users) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, id); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

// Get loads one user by Telegram ID.
func (r *Users) Get(ctx context.Context, id int64) (User, error) {
	const q = `SELECT id, full_name, hobby, rating, created_at FROM users WHERE id = $1`
	var u User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// AddRating applies a signed delta to the user's rating in one statement and
// returns the new value. Concurrent sessions for different chats never see
// lost updates this way.
func (r *Users) AddRating(ctx context.Context, id int64, delta float64) (float64, error) {
	const q = `UPDATE users SET rating = rating + $1 WHERE id = $2 RETURNING rating`
	var rating float64
	if err := r.db.GetContext(ctx, &rating, q, delta, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("update rating: %w", err)
	}
	return rating, nil
}

// Leaderboard returns the top users ordered by rating.
func (r *Users) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	const q = `
		SELECT ROW_NUMBER() OVER (ORDER BY rating DESC, id) AS position,
		       full_name, rating
		FROM users
		ORDER BY rating DESC, id
		LIMIT $1`
	entries := []LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns the user's 1-based position in the leaderboard.
func (r *Users) Rank(ctx context.Context, id int64) (int, error) {
	const q = `
		SELECT position FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY rating DESC, id) AS position
			FROM users
		) ranked
		WHERE id = $1`
	var position int
	if err := r.db.GetContext(ctx, &position, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("select rank: %w", err)
	}
	return position, nil
}

// All returns every registered user ID, for broadcasts.
func (r *Users) All(ctx context.Context) ([]int64, error) {
	const q = `SELECT id FROM users ORDER BY id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, fmt.Errorf("select user ids: %w", err)
	}
	return ids, nil
}
