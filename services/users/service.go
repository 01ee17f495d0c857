// Package users wraps user persistence with registration, profile, and
// leaderboard operations.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/puzzlebot/core/logger"
	"github.com/m3rciful/puzzlebot/repository"
)

const component = "service.users"

// Profile aggregates everything the profile screen shows.
type Profile struct {
	User   repository.User
	Rank   int
	Solved int
}

// Service exposes user registration, ratings, and leaderboard reads.
type Service struct {
	users  *repository.Users
	solved *repository.SolvedTasks
	logs   *repository.Logs
}

// NewService builds the users service.
func NewService(users *repository.Users, solved *repository.SolvedTasks, logs *repository.Logs) *Service {
	return &Service{users: users, solved: solved, logs: logs}
}

// Register creates the user record and logs the registration.
func (s *Service) Register(ctx context.Context, id int64, fullName, hobby string) error {
	if err := s.users.Create(ctx, id, fullName, hobby); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return err
		}
		return fmt.Errorf("register user: %w", err)
	}
	if err := s.logs.Add(ctx, id, "Registered"); err != nil {
		logger.Warn(ctx, component, "register.log_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	logger.Info(ctx, component, "user.registered",
		slog.String("status", "ok"),
	)
	return nil
}

// IsRegistered reports whether the Telegram user has completed registration.
func (s *Service) IsRegistered(ctx context.Context, id int64) (bool, error) {
	return s.users.Exists(ctx, id)
}

// GetUserByTelegramID loads the domain user for the Telegram ID.
func (s *Service) GetUserByTelegramID(ctx context.Context, id int64) (repository.User, error) {
	return s.users.Get(ctx, id)
}

// AddRating applies a rating delta and returns the new total.
func (s *Service) AddRating(ctx context.Context, id int64, delta float64) (float64, error) {
	rating, err := s.users.AddRating(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	logger.Debug(ctx, component, "rating.updated",
		slog.Float64("rating", rating),
	)
	return rating, nil
}

// GetProfile loads the user together with rank and solved-puzzle count.
func (s *Service) GetProfile(ctx context.Context, id int64) (Profile, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	rank, err := s.users.Rank(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	solved, err := s.solved.CountByUser(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Rank: rank, Solved: solved}, nil
}

// Leaderboard returns the top rated users.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	return s.users.Leaderboard(ctx, limit)
}

// AllIDs returns every registered user ID.
func (s *Service) AllIDs(ctx context.Context) ([]int64, error) {
	return s.users.All(ctx)
}
