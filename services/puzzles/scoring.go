package puzzles

import "math"

// Scoring constants. Hint decay applies to the base success award only;
// wrong-attempt penalties accumulate undamped on the session score.
const (
	// HintDecayFactor multiplies the base award once per hint used.
	HintDecayFactor = 0.9
	// WrongAttemptPenalty is subtracted from the session score per wrong answer.
	WrongAttemptPenalty = 0.5
)

var basePoints = map[Difficulty]float64{
	DifficultyEasy:   1,
	DifficultyMedium: 2,
	DifficultyHard:   3,
}

// BasePoints returns the success award for a difficulty level: easy 1,
// medium 2, hard 3. Unknown difficulties award nothing.
func BasePoints(d Difficulty) float64 {
	return basePoints[d]
}

// ApplyHintPenalty scales points by HintDecayFactor^hintsUsed.
func ApplyHintPenalty(points float64, hintsUsed int) float64 {
	if hintsUsed <= 0 {
		return points
	}
	return points * math.Pow(HintDecayFactor, float64(hintsUsed))
}

// ApplyWrongAttemptPenalty subtracts the fixed wrong-answer penalty.
// The result may go negative; negative session scores still reach the rating.
func ApplyWrongAttemptPenalty(score float64) float64 {
	return score - WrongAttemptPenalty
}
