package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/puzzlebot/repository"
	"github.com/m3rciful/puzzlebot/services/puzzles"
	"github.com/m3rciful/puzzlebot/services/users"
)

func TestFormatLeaderboard(t *testing.T) {
	got := formatLeaderboard([]repository.LeaderboardEntry{
		{Position: 1, FullName: "Alice", Rating: 12.5},
		{Position: 2, FullName: "Bob", Rating: 7},
	})
	assert.Contains(t, got, "1. Alice: 12.50")
	assert.Contains(t, got, "2. Bob: 7.00")

	empty := formatLeaderboard(nil)
	assert.Contains(t, empty, "empty")
}

func TestFormatProfile(t *testing.T) {
	got := formatProfile(users.Profile{
		User:   repository.User{FullName: "Alice", Hobby: "chess", Rating: 4.43},
		Rank:   3,
		Solved: 7,
	})
	assert.Contains(t, got, "Alice")
	assert.Contains(t, got, "chess")
	assert.Contains(t, got, "4.43")
	assert.Contains(t, got, "#3")
	assert.Contains(t, got, "7")
}

func TestMdSafeEscapesSpecials(t *testing.T) {
	assert.NotContains(t, mdSafe("a_b*c"), "a_b")
	assert.Equal(t, "plain text", mdSafe("plain text"))
}

func TestCategoryKeyboardCoversAllCategories(t *testing.T) {
	kb := categoryKeyboard()
	var total int
	for _, row := range kb.InlineKeyboard {
		total += len(row)
	}
	assert.Equal(t, len(puzzles.Categories())+1, total)
}

func TestDifficultyKeyboardCoversAllLevels(t *testing.T) {
	kb := difficultyKeyboard()
	assert.Len(t, kb.InlineKeyboard, len(puzzles.Difficulties()))
}
