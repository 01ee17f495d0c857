// Package puzzles owns the lifecycle of one active puzzle attempt per user:
// category and difficulty selection, solving, hint issuance, cancellation,
// and completion, together with the scoring rules applied on the way.
package puzzles

import (
	"time"

	"github.com/google/uuid"
)

// Category enumerates puzzle topics offered to the user.
type Category string

const (
	CategoryLogic        Category = "logic"
	CategoryCharades     Category = "charades"
	CategoryRiddles      Category = "riddles"
	CategoryMath         Category = "math"
	CategoryAssociations Category = "associations"

	// CategoryRandom is resolved to a concrete category at selection time so
	// the whole session runs against a single fixed topic.
	CategoryRandom Category = "random"
)

// Categories returns the concrete categories, excluding CategoryRandom.
func Categories() []Category {
	return []Category{
		CategoryLogic,
		CategoryCharades,
		CategoryRiddles,
		CategoryMath,
		CategoryAssociations,
	}
}

// ValidCategory reports whether c is selectable, including CategoryRandom.
func ValidCategory(c Category) bool {
	if c == CategoryRandom {
		return true
	}
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty enumerates puzzle difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties returns all difficulty levels in ascending order of reward.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// State identifies where a session sits in its lifecycle.
type State string

const (
	StateSelectingDifficulty State = "selecting_difficulty"
	StateSolving             State = "solving"
	StateTerminated          State = "terminated"
)

// Per-session limits. Both are fixed by the game rules, not configuration.
const (
	// MaxAttempts is the number of answer submissions per puzzle.
	MaxAttempts = 3
	// MaxHints is the number of hints per puzzle.
	MaxHints = 3
)

// Session is the live state of one user's attempt at one puzzle. Category and
// difficulty are fixed at creation; puzzle text and the advisory answer are
// immutable once generated. The ID fences in-flight generator results: a
// result is committed only if the registry still holds the same session.
type Session struct {
	ID         uuid.UUID
	UserID     int64
	Category   Category
	Difficulty Difficulty
	State      State

	PuzzleText string
	AnswerHint string

	AttemptsLeft int
	HintsUsed    int
	Score        float64

	CreatedAt time.Time
}

func newSession(userID int64, category Category) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		State:     StateSelectingDifficulty,
		CreatedAt: time.Now(),
	}
}

// Solving reports whether the session currently accepts answers and hints.
func (s *Session) Solving() bool {
	return s != nil && s.State == StateSolving
}
