// Package llm talks to an OpenAI-compatible completion endpoint to generate
// puzzles, hints, and answer verdicts. The puzzle core consumes the three
// interfaces below and never depends on the provider wire format.
package llm

import "context"

// Puzzle is a generated task with its advisory answer text. AnswerHint is
// shown to the user on reveal; grading is delegated to the AnswerVerifier,
// never done by matching against it.
type Puzzle struct {
	Text       string
	AnswerHint string
}

// Verdict is the verifier's judgement of a submitted answer.
type Verdict struct {
	Correct     bool
	Explanation string
}

// PuzzleGenerator produces a puzzle for a topic and difficulty, conditioned
// on the user's recent interaction context.
type PuzzleGenerator interface {
	GeneratePuzzle(ctx context.Context, category, difficulty, userContext string) (Puzzle, error)
}

// HintGenerator produces a single short hint for a puzzle.
type HintGenerator interface {
	GenerateHint(ctx context.Context, puzzleText, userContext string) (string, error)
}

// AnswerVerifier judges a user's answer to a puzzle.
type AnswerVerifier interface {
	VerifyAnswer(ctx context.Context, puzzleText, userAnswer, userContext string) (Verdict, error)
}
