package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/puzzlebot/core/telegram/keyboard"
	"github.com/m3rciful/puzzlebot/services/puzzles"
)

// Callback keys. Payloads carry the selected value.
const (
	cbCategory   = "category"
	cbDifficulty = "difficulty"
	cbHint       = "hint"
	cbCancel     = "cancel_puzzle"
	cbNewPuzzle  = "new_puzzle"
	cbFeedback   = "feedback"
)

// Main menu button labels double as command aliases.
const (
	btnNewPuzzle   = "🧩 New puzzle"
	btnLeaderboard = "🏆 Leaderboard"
	btnProfile     = "👤 Profile"
)

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnNewPuzzle},
		[]string{btnLeaderboard, btnProfile},
	)
}

func categoryKeyboard() *tele.ReplyMarkup {
	cats := puzzles.Categories()
	buttons := make([]keyboard.InlineBtn, 0, len(cats)+1)
	for _, c := range cats {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   categoryLabel(c),
			Unique: cbCategory,
			Data:   string(c),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{
		Text:   categoryLabel(puzzles.CategoryRandom),
		Unique: cbCategory,
		Data:   string(puzzles.CategoryRandom),
	})
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func difficultyKeyboard() *tele.ReplyMarkup {
	diffs := puzzles.Difficulties()
	buttons := make([]keyboard.InlineBtn, 0, len(diffs))
	for _, d := range diffs {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   difficultyLabel(d),
			Unique: cbDifficulty,
			Data:   string(d),
		})
	}
	return keyboard.InlineButtons(buttons)
}

func solvingKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "💡 Hint", Unique: cbHint},
			{Text: "❌ Give up", Unique: cbCancel},
		},
	)
}

func finishedKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "🧩 Another one", Unique: cbNewPuzzle},
			{Text: "✍️ Feedback", Unique: cbFeedback},
		},
	)
}
