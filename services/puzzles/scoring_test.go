package puzzles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasePoints(t *testing.T) {
	assert.Equal(t, 1.0, BasePoints(DifficultyEasy))
	assert.Equal(t, 2.0, BasePoints(DifficultyMedium))
	assert.Equal(t, 3.0, BasePoints(DifficultyHard))
	assert.Equal(t, 0.0, BasePoints(Difficulty("nope")))
}

func TestApplyHintPenalty(t *testing.T) {
	assert.Equal(t, 3.0, ApplyHintPenalty(3, 0))
	assert.InDelta(t, 2.7, ApplyHintPenalty(3, 1), 1e-9)
	assert.InDelta(t, 2.43, ApplyHintPenalty(3, 2), 1e-9)
	assert.InDelta(t, 0.729, ApplyHintPenalty(1, 3), 1e-9)
	assert.Equal(t, 2.0, ApplyHintPenalty(2, -1))
}

func TestApplyWrongAttemptPenalty(t *testing.T) {
	assert.Equal(t, -0.5, ApplyWrongAttemptPenalty(0))
	assert.InDelta(t, -1.5, ApplyWrongAttemptPenalty(ApplyWrongAttemptPenalty(ApplyWrongAttemptPenalty(0))), 1e-9)
	assert.InDelta(t, 1.5, ApplyWrongAttemptPenalty(2), 1e-9)
}
