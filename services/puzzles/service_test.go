package puzzles

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/puzzlebot/llm"
	"github.com/m3rciful/puzzlebot/services/memory"
)

type ratingStub struct {
	mu     sync.Mutex
	rating map[int64]float64
	err    error
}

func newRatingStub() *ratingStub {
	return &ratingStub{rating: make(map[int64]float64)}
}

func (r *ratingStub) AddRating(_ context.Context, userID int64, delta float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.rating[userID] += delta
	return r.rating[userID], nil
}

type logStub struct {
	mu      sync.Mutex
	entries []string
}

func (l *logStub) Add(_ context.Context, _ int64, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, text)
	return nil
}

type testEnv struct {
	svc     *Service
	reg     *Registry
	buf     *memory.Buffer
	mock    *llm.Mock
	ratings *ratingStub
	logs    *logStub
}

func newTestEnv() *testEnv {
	reg := NewRegistry()
	buf := memory.NewBuffer(memory.DefaultCapacity)
	mock := &llm.Mock{}
	ratings := newRatingStub()
	logs := &logStub{}
	svc := NewService(reg, buf, mock, mock, mock, ratings, logs, logs)
	return &testEnv{svc: svc, reg: reg, buf: buf, mock: mock, ratings: ratings, logs: logs}
}

func (e *testEnv) startSolving(t *testing.T, userID int64, d Difficulty) Issued {
	t.Helper()
	e.mock.GeneratePuzzleFunc = func(context.Context, string, string, string) (llm.Puzzle, error) {
		return llm.Puzzle{Text: "What gets wetter as it dries?", AnswerHint: "A towel"}, nil
	}
	_, err := e.svc.SelectCategory(context.Background(), userID, CategoryRiddles)
	require.NoError(t, err)
	issued, err := e.svc.SelectDifficulty(context.Background(), userID, d)
	require.NoError(t, err)
	return issued
}

func TestSelectCategoryResolvesRandom(t *testing.T) {
	env := newTestEnv()
	env.svc.randInt = func(int) int { return 2 }

	got, err := env.svc.SelectCategory(context.Background(), 1, CategoryRandom)
	require.NoError(t, err)
	assert.Equal(t, Categories()[2], got)

	sess, ok := env.reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, got, sess.Category)
}

func TestSelectCategoryRejectsUnknown(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.SelectCategory(context.Background(), 1, Category("chess"))
	assert.Error(t, err)
}

func TestSelectDifficultyIssuesPuzzle(t *testing.T) {
	env := newTestEnv()
	issued := env.startSolving(t, 1, DifficultyEasy)

	assert.Equal(t, DifficultyEasy, issued.Difficulty)
	assert.Equal(t, MaxAttempts, issued.AttemptsLeft)
	assert.Equal(t, "What gets wetter as it dries?", issued.PuzzleText)

	sess, ok := env.reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, StateSolving, sess.State)
	assert.Equal(t, 0, sess.HintsUsed)
	assert.Equal(t, 0.0, sess.Score)
	assert.Contains(t, env.buf.Read(1), "What gets wetter as it dries?")
}

func TestSelectDifficultyWithoutSession(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.SelectDifficulty(context.Background(), 1, DifficultyEasy)
	assert.ErrorIs(t, err, ErrNotInSession)
}

func TestSelectDifficultyWhileSolving(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)

	_, err := env.svc.SelectDifficulty(context.Background(), 1, DifficultyHard)
	assert.ErrorIs(t, err, ErrAlreadyActive)

	_, err = env.svc.SelectCategory(context.Background(), 1, CategoryLogic)
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestSelectDifficultyMalformedGenerationRecovers(t *testing.T) {
	env := newTestEnv()
	env.mock.GeneratePuzzleFunc = func(context.Context, string, string, string) (llm.Puzzle, error) {
		return llm.Puzzle{Text: "Puzzle without an answer"},
			&llm.GenerationError{Raw: "Puzzle without an answer"}
	}
	_, err := env.svc.SelectCategory(context.Background(), 1, CategoryLogic)
	require.NoError(t, err)

	issued, err := env.svc.SelectDifficulty(context.Background(), 1, DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, "Puzzle without an answer", issued.PuzzleText)

	sess, _ := env.reg.Get(1)
	assert.Equal(t, llm.FallbackAnswer, sess.AnswerHint)
}

func TestSelectDifficultyGenerationFailure(t *testing.T) {
	env := newTestEnv()
	env.mock.GeneratePuzzleFunc = func(context.Context, string, string, string) (llm.Puzzle, error) {
		return llm.Puzzle{}, &llm.UnavailableError{Op: "generate", Err: errors.New("timeout")}
	}
	_, err := env.svc.SelectCategory(context.Background(), 1, CategoryLogic)
	require.NoError(t, err)

	_, err = env.svc.SelectDifficulty(context.Background(), 1, DifficultyEasy)
	require.Error(t, err)

	// The session stays in difficulty selection so the user can retry.
	sess, ok := env.reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, StateSelectingDifficulty, sess.State)
}

func TestSubmitAnswerCorrectFirstTry(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyMedium)
	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Correct: true, Explanation: "Exactly right"}, nil
	}

	out, err := env.svc.SubmitAnswer(context.Background(), 1, "a towel")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 2.0, out.Award)
	assert.Equal(t, 2.0, out.Rating)

	_, ok := env.reg.Get(1)
	assert.False(t, ok)
	assert.Empty(t, env.buf.Read(1))
}

func TestSubmitAnswerHardWithTwoHints(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyHard)
	env.mock.GenerateHintFunc = func(context.Context, string, string) (string, error) {
		return "Think about laundry", nil
	}
	for range 2 {
		_, err := env.svc.RequestHint(context.Background(), 1)
		require.NoError(t, err)
	}
	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Correct: true}, nil
	}

	out, err := env.svc.SubmitAnswer(context.Background(), 1, "a towel")
	require.NoError(t, err)
	assert.InDelta(t, 2.43, out.Award, 1e-9)
	assert.InDelta(t, 2.43, out.Rating, 1e-9)
}

func TestSubmitAnswerWrongThenCorrect(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)

	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Explanation: "Not quite"}, nil
	}
	out, err := env.svc.SubmitAnswer(context.Background(), 1, "a sponge")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, 2, out.AttemptsLeft)

	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Correct: true}, nil
	}
	out, err = env.svc.SubmitAnswer(context.Background(), 1, "a towel")
	require.NoError(t, err)
	assert.True(t, out.Correct)
	// One easy point minus the wrong-attempt penalty.
	assert.InDelta(t, 0.5, out.Award, 1e-9)
	assert.InDelta(t, 0.5, out.Rating, 1e-9)
}

func TestSubmitAnswerExhaustsAttempts(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)
	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Explanation: "Nope"}, nil
	}

	for i := MaxAttempts - 1; i >= 1; i-- {
		out, err := env.svc.SubmitAnswer(context.Background(), 1, "wrong")
		require.NoError(t, err)
		assert.Equal(t, i, out.AttemptsLeft)
		assert.False(t, out.Exhausted)
	}

	out, err := env.svc.SubmitAnswer(context.Background(), 1, "wrong")
	require.NoError(t, err)
	assert.True(t, out.Exhausted)
	assert.Equal(t, "A towel", out.Reveal)

	_, ok := env.reg.Get(1)
	assert.False(t, ok)
	assert.Empty(t, env.buf.Read(1))
	// Exhaustion forfeits the session; the accumulated penalty is not charged.
	assert.Equal(t, 0.0, env.ratings.rating[1])
}

func TestSubmitAnswerNegativeAwardStillApplied(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)

	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{}, nil
	}
	_, err := env.svc.SubmitAnswer(context.Background(), 1, "wrong")
	require.NoError(t, err)
	_, err = env.svc.SubmitAnswer(context.Background(), 1, "wrong again")
	require.NoError(t, err)

	env.mock.GenerateHintFunc = func(context.Context, string, string) (string, error) {
		return "hint", nil
	}
	for range MaxHints {
		_, err = env.svc.RequestHint(context.Background(), 1)
		require.NoError(t, err)
	}

	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{Correct: true}, nil
	}
	out, err := env.svc.SubmitAnswer(context.Background(), 1, "a towel")
	require.NoError(t, err)
	// 1 * 0.9^3 = 0.729, minus two wrong attempts at 0.5 each.
	assert.InDelta(t, -0.271, out.Award, 1e-9)
	assert.InDelta(t, -0.271, env.ratings.rating[1], 1e-9)
}

func TestSubmitAnswerVerifierUnavailableKeepsAttempt(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)
	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		return llm.Verdict{}, &llm.UnavailableError{Op: "verify", Err: errors.New("503")}
	}

	_, err := env.svc.SubmitAnswer(context.Background(), 1, "a towel")
	assert.ErrorIs(t, err, ErrVerifierUnavailable)

	sess, ok := env.reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, MaxAttempts, sess.AttemptsLeft)
	assert.Equal(t, 0.0, sess.Score)
}

func TestSubmitAnswerWithoutSession(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.SubmitAnswer(context.Background(), 1, "anything")
	assert.ErrorIs(t, err, ErrNotInSession)
}

func TestSubmitAnswerDroppedAfterCancel(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyHard)

	verifying := make(chan struct{})
	release := make(chan struct{})
	env.mock.VerifyAnswerFunc = func(context.Context, string, string, string) (llm.Verdict, error) {
		close(verifying)
		<-release
		return llm.Verdict{Correct: true}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.SubmitAnswer(context.Background(), 1, "a towel")
		done <- err
	}()

	<-verifying
	_, err := env.svc.Cancel(context.Background(), 1)
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, ErrNotInSession)
	// The stale success must not credit the rating.
	assert.Equal(t, 0.0, env.ratings.rating[1])
}

func TestRequestHintCap(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyMedium)
	env.mock.GenerateHintFunc = func(context.Context, string, string) (string, error) {
		return "narrow it down", nil
	}

	for range MaxHints {
		hint, err := env.svc.RequestHint(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "narrow it down", hint)
	}

	_, err := env.svc.RequestHint(context.Background(), 1)
	assert.ErrorIs(t, err, ErrHintsExhausted)

	sess, _ := env.reg.Get(1)
	assert.Equal(t, MaxHints, sess.HintsUsed)
	assert.Equal(t, MaxAttempts, sess.AttemptsLeft)
}

func TestRequestHintGeneratorFailureLeavesCounter(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)
	env.mock.GenerateHintFunc = func(context.Context, string, string) (string, error) {
		return "", &llm.UnavailableError{Op: "hint", Err: errors.New("timeout")}
	}

	_, err := env.svc.RequestHint(context.Background(), 1)
	require.Error(t, err)

	sess, _ := env.reg.Get(1)
	assert.Equal(t, 0, sess.HintsUsed)
}

func TestCancelRevealsAnswer(t *testing.T) {
	env := newTestEnv()
	env.startSolving(t, 1, DifficultyEasy)

	reveal, err := env.svc.Cancel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A towel", reveal)

	_, ok := env.reg.Get(1)
	assert.False(t, ok)
	assert.Empty(t, env.buf.Read(1))

	_, err = env.svc.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotInSession)
}

func TestCancelBeforeSolving(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.SelectCategory(context.Background(), 1, CategoryLogic)
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotInSession)
}

func TestSubmitFeedbackRecorded(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.svc.SubmitFeedback(context.Background(), 1, "loved the riddle"))
	assert.Contains(t, env.logs.entries, "Feedback: loved the riddle")
}
