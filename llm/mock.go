package llm

import "context"

// Mock implements all three generator interfaces through pluggable functions.
// Unset functions return zero values, which keeps simple tests short.
type Mock struct {
	GeneratePuzzleFunc func(ctx context.Context, category, difficulty, userContext string) (Puzzle, error)
	GenerateHintFunc   func(ctx context.Context, puzzleText, userContext string) (string, error)
	VerifyAnswerFunc   func(ctx context.Context, puzzleText, userAnswer, userContext string) (Verdict, error)
}

var (
	_ PuzzleGenerator = (*Mock)(nil)
	_ HintGenerator   = (*Mock)(nil)
	_ AnswerVerifier  = (*Mock)(nil)
)

func (m *Mock) GeneratePuzzle(ctx context.Context, category, difficulty, userContext string) (Puzzle, error) {
	if m.GeneratePuzzleFunc == nil {
		return Puzzle{}, nil
	}
	return m.GeneratePuzzleFunc(ctx, category, difficulty, userContext)
}

func (m *Mock) GenerateHint(ctx context.Context, puzzleText, userContext string) (string, error) {
	if m.GenerateHintFunc == nil {
		return "", nil
	}
	return m.GenerateHintFunc(ctx, puzzleText, userContext)
}

func (m *Mock) VerifyAnswer(ctx context.Context, puzzleText, userAnswer, userContext string) (Verdict, error) {
	if m.VerifyAnswerFunc == nil {
		return Verdict{}, nil
	}
	return m.VerifyAnswerFunc(ctx, puzzleText, userAnswer, userContext)
}
