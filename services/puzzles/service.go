package puzzles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/m3rciful/puzzlebot/core/logger"
	"github.com/m3rciful/puzzlebot/llm"
	"github.com/m3rciful/puzzlebot/services/memory"
)

const component = "service.puzzles"

// RatingStore persists cumulative user ratings. AddRating applies a signed
// delta atomically and returns the new value; per-user serialization is the
// store's responsibility.
type RatingStore interface {
	AddRating(ctx context.Context, userID int64, delta float64) (float64, error)
}

// ActivityLog records free-text audit entries per user.
type ActivityLog interface {
	Add(ctx context.Context, userID int64, text string) error
}

// SolvedStore records successfully completed puzzles.
type SolvedStore interface {
	Add(ctx context.Context, userID int64, taskText string) error
}

// Issued describes a freshly generated puzzle handed to the user.
type Issued struct {
	SessionID    uuid.UUID
	Category     Category
	Difficulty   Difficulty
	PuzzleText   string
	AttemptsLeft int
}

// AnswerOutcome describes the result of one answer submission.
type AnswerOutcome struct {
	Correct      bool
	Exhausted    bool
	Explanation  string
	AttemptsLeft int
	// Award and Rating are set on success only.
	Award  float64
	Rating float64
	// Reveal carries the advisory answer text when attempts ran out.
	Reveal string
}

// Service drives puzzle sessions: selection, generation, solving, hints,
// cancellation, and completion. Generator calls run without registry locks;
// their results are committed through session-ID fenced mutations, so a
// result that raced a cancellation is silently dropped.
type Service struct {
	registry *Registry
	buffer   *memory.Buffer

	generator llm.PuzzleGenerator
	hints     llm.HintGenerator
	verifier  llm.AnswerVerifier

	ratings RatingStore
	logs    ActivityLog
	solved  SolvedStore

	randInt func(n int) int
}

// NewService wires the session state machine with its collaborators.
// logs and solved may be nil; the corresponding records are then skipped.
func NewService(
	registry *Registry,
	buffer *memory.Buffer,
	generator llm.PuzzleGenerator,
	hints llm.HintGenerator,
	verifier llm.AnswerVerifier,
	ratings RatingStore,
	logs ActivityLog,
	solved SolvedStore,
) *Service {
	return &Service{
		registry:  registry,
		buffer:    buffer,
		generator: generator,
		hints:     hints,
		verifier:  verifier,
		ratings:   ratings,
		logs:      logs,
		solved:    solved,
		randInt:   rand.Intn,
	}
}

// Active returns the user's current session, if any.
func (s *Service) Active(userID int64) (Session, bool) {
	return s.registry.Get(userID)
}

// SelectCategory fixes the category for the user's next puzzle and opens a
// session awaiting difficulty selection. CategoryRandom resolves to a
// concrete category here, so the whole session runs one topic. A session in
// the Solving state blocks new selections with ErrAlreadyActive.
func (s *Service) SelectCategory(ctx context.Context, userID int64, category Category) (Category, error) {
	if !ValidCategory(category) {
		return "", fmt.Errorf("unknown category %q", category)
	}
	if category == CategoryRandom {
		all := Categories()
		category = all[s.randInt(len(all))]
	}

	sess, err := s.registry.Create(userID, category)
	if err != nil {
		return "", err
	}

	logger.Debug(ctx, component, "session.created",
		slog.String("status", "ok"),
		slog.String("session_id", sess.ID.String()),
		slog.String("category", string(category)),
	)
	return category, nil
}

// SelectDifficulty generates the puzzle for the chosen difficulty and moves
// the session into Solving with fresh attempt, hint, and score counters.
// A malformed generator response with usable puzzle text is recovered by
// substituting the fallback answer text.
func (s *Service) SelectDifficulty(ctx context.Context, userID int64, difficulty Difficulty) (Issued, error) {
	if !ValidDifficulty(difficulty) {
		return Issued{}, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	sess, ok := s.registry.Get(userID)
	if !ok {
		return Issued{}, ErrNotInSession
	}
	switch sess.State {
	case StateSelectingDifficulty:
	case StateSolving:
		return Issued{}, ErrAlreadyActive
	default:
		return Issued{}, ErrWrongState
	}

	puzzle, err := s.generator.GeneratePuzzle(ctx, string(sess.Category), string(difficulty), s.buffer.Read(userID))
	if err != nil {
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) && puzzle.Text != "" {
			puzzle.AnswerHint = llm.FallbackAnswer
			logger.Warn(ctx, component, "puzzle.fallback_answer",
				slog.String("status", "ok"),
				slog.String("session_id", sess.ID.String()),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		} else {
			return Issued{}, err
		}
	}

	committed, err := s.registry.Mutate(userID, sess.ID, func(live *Session) error {
		if live.State != StateSelectingDifficulty {
			return ErrWrongState
		}
		live.Difficulty = difficulty
		live.PuzzleText = puzzle.Text
		live.AnswerHint = puzzle.AnswerHint
		live.AttemptsLeft = MaxAttempts
		live.HintsUsed = 0
		live.Score = 0
		live.State = StateSolving
		return nil
	})
	if err != nil {
		return Issued{}, err
	}

	s.buffer.Append(userID, fmt.Sprintf("New puzzle, topic: %s, difficulty: %s, task: %s",
		committed.Category, committed.Difficulty, committed.PuzzleText))
	s.logActivity(ctx, userID, fmt.Sprintf("Started a %s %s puzzle", difficulty, committed.Category))

	logger.Info(ctx, component, "puzzle.issued",
		slog.String("status", "ok"),
		slog.String("session_id", committed.ID.String()),
		slog.String("category", string(committed.Category)),
		slog.String("difficulty", string(committed.Difficulty)),
		slog.Int("attempts_left", committed.AttemptsLeft),
	)
	return Issued{
		SessionID:    committed.ID,
		Category:     committed.Category,
		Difficulty:   committed.Difficulty,
		PuzzleText:   committed.PuzzleText,
		AttemptsLeft: committed.AttemptsLeft,
	}, nil
}

// SubmitAnswer grades one answer submission. A verifier outage surfaces as
// ErrVerifierUnavailable and leaves the session untouched, so the user can
// retry the same answer without losing an attempt.
func (s *Service) SubmitAnswer(ctx context.Context, userID int64, answer string) (AnswerOutcome, error) {
	sess, ok := s.registry.Get(userID)
	if !ok || !sess.Solving() {
		return AnswerOutcome{}, ErrNotInSession
	}

	verdict, err := s.verifier.VerifyAnswer(ctx, sess.PuzzleText, answer, s.buffer.Read(userID))
	if err != nil {
		logger.Warn(ctx, component, "answer.verify_failed",
			slog.String("status", "retry"),
			slog.String("session_id", sess.ID.String()),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return AnswerOutcome{}, ErrVerifierUnavailable
	}

	if verdict.Correct {
		return s.completeSuccess(ctx, userID, sess, verdict)
	}
	return s.applyWrongAnswer(ctx, userID, sess, answer, verdict)
}

func (s *Service) completeSuccess(ctx context.Context, userID int64, sess Session, verdict llm.Verdict) (AnswerOutcome, error) {
	award := ApplyHintPenalty(BasePoints(sess.Difficulty), sess.HintsUsed)

	committed, err := s.registry.Mutate(userID, sess.ID, func(live *Session) error {
		live.Score += award
		live.State = StateTerminated
		return nil
	})
	if err != nil {
		// The session was cancelled while verification was in flight.
		return AnswerOutcome{}, err
	}

	// The session total includes accumulated wrong-attempt penalties and may
	// be negative; it is added to the rating unconditionally.
	rating, err := s.ratings.AddRating(ctx, userID, committed.Score)
	if err != nil {
		s.registry.Remove(userID, sess.ID)
		s.buffer.Clear(userID)
		return AnswerOutcome{}, fmt.Errorf("update rating: %w", err)
	}

	s.buffer.Clear(userID)
	s.registry.Remove(userID, sess.ID)

	if s.solved != nil {
		if logErr := s.solved.Add(ctx, userID, committed.PuzzleText); logErr != nil {
			logger.Warn(ctx, component, "solved.record_failed",
				slog.String("err", logger.SanitizeLimit(logErr.Error(), 256)),
			)
		}
	}
	s.logActivity(ctx, userID, fmt.Sprintf("Solved a puzzle, rating changed to %.2f", rating))

	logger.Info(ctx, component, "session.completed",
		slog.String("status", "ok"),
		slog.String("outcome", "ok"),
		slog.String("session_id", committed.ID.String()),
		slog.String("difficulty", string(committed.Difficulty)),
		slog.Int("hints_used", committed.HintsUsed),
		slog.Float64("score", committed.Score),
		slog.Float64("rating", rating),
	)
	return AnswerOutcome{
		Correct:     true,
		Explanation: verdict.Explanation,
		Award:       committed.Score,
		Rating:      rating,
	}, nil
}

func (s *Service) applyWrongAnswer(ctx context.Context, userID int64, sess Session, answer string, verdict llm.Verdict) (AnswerOutcome, error) {
	committed, err := s.registry.Mutate(userID, sess.ID, func(live *Session) error {
		live.Score = ApplyWrongAttemptPenalty(live.Score)
		if live.AttemptsLeft > 0 {
			live.AttemptsLeft--
		}
		if live.AttemptsLeft == 0 {
			live.State = StateTerminated
		}
		return nil
	})
	if err != nil {
		return AnswerOutcome{}, err
	}

	s.buffer.Append(userID, "Answer given: "+answer)

	if committed.AttemptsLeft > 0 {
		logger.Info(ctx, component, "answer.wrong",
			slog.String("status", "ok"),
			slog.String("session_id", committed.ID.String()),
			slog.Int("attempts_left", committed.AttemptsLeft),
			slog.Float64("score", committed.Score),
		)
		return AnswerOutcome{
			Explanation:  verdict.Explanation,
			AttemptsLeft: committed.AttemptsLeft,
		}, nil
	}

	s.buffer.Clear(userID)
	s.registry.Remove(userID, sess.ID)
	s.logActivity(ctx, userID, "Ran out of attempts")

	logger.Info(ctx, component, "session.exhausted",
		slog.String("status", "ok"),
		slog.String("outcome", "fail"),
		slog.String("session_id", committed.ID.String()),
		slog.Float64("score", committed.Score),
	)
	return AnswerOutcome{
		Exhausted:   true,
		Explanation: verdict.Explanation,
		Reveal:      committed.AnswerHint,
	}, nil
}

// RequestHint issues one hint for the active puzzle, capped at MaxHints per
// session. Hints never consume attempts.
func (s *Service) RequestHint(ctx context.Context, userID int64) (string, error) {
	sess, ok := s.registry.Get(userID)
	if !ok || !sess.Solving() {
		return "", ErrNotInSession
	}
	if sess.HintsUsed >= MaxHints {
		return "", ErrHintsExhausted
	}

	hint, err := s.hints.GenerateHint(ctx, sess.PuzzleText, s.buffer.Read(userID))
	if err != nil {
		return "", err
	}

	committed, err := s.registry.Mutate(userID, sess.ID, func(live *Session) error {
		if !live.Solving() {
			return ErrNotInSession
		}
		if live.HintsUsed >= MaxHints {
			return ErrHintsExhausted
		}
		live.HintsUsed++
		return nil
	})
	if err != nil {
		return "", err
	}

	s.buffer.Append(userID, "Hint used: "+hint)
	s.logActivity(ctx, userID, "Used a hint")

	logger.Info(ctx, component, "hint.issued",
		slog.String("status", "ok"),
		slog.String("session_id", committed.ID.String()),
		slog.Int("hints_used", committed.HintsUsed),
	)
	return hint, nil
}

// Cancel abandons the active puzzle, clears the user's context, and returns
// the advisory answer text for the reveal message.
func (s *Service) Cancel(ctx context.Context, userID int64) (string, error) {
	sess, ok := s.registry.Get(userID)
	if !ok || !sess.Solving() {
		return "", ErrNotInSession
	}
	if !s.registry.Remove(userID, sess.ID) {
		return "", ErrNotInSession
	}
	s.buffer.Clear(userID)
	s.logActivity(ctx, userID, "Cancelled the puzzle")

	logger.Info(ctx, component, "session.cancelled",
		slog.String("status", "ok"),
		slog.String("outcome", "cancelled"),
		slog.String("session_id", sess.ID.String()),
	)
	return sess.AnswerHint, nil
}

// SubmitFeedback records free-text feedback left after a finished puzzle.
func (s *Service) SubmitFeedback(ctx context.Context, userID int64, text string) error {
	if s.logs == nil {
		return nil
	}
	if err := s.logs.Add(ctx, userID, "Feedback: "+text); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	logger.Info(ctx, component, "feedback.recorded",
		slog.String("status", "ok"),
	)
	return nil
}

func (s *Service) logActivity(ctx context.Context, userID int64, text string) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Add(ctx, userID, text); err != nil {
		logger.Warn(ctx, component, "activity.record_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}
