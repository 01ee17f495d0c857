package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/puzzlebot/core/telegram/format"
	"github.com/m3rciful/puzzlebot/repository"
	"github.com/m3rciful/puzzlebot/services/puzzles"
	"github.com/m3rciful/puzzlebot/services/users"
)

// mdSafe escapes generated text for Telegram Markdown. Provider replies are
// told to avoid markdown, but a stray underscore would still break parsing.
func mdSafe(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return escaped
}

const (
	textAskName  = "Hi! I'm a puzzle bot. Before we start, what's your name?"
	textAskHobby = "Nice to meet you, %s! What's your favorite hobby? I'll use it to pick puzzles you'll enjoy."
	textWelcome  = "You're all set, %s! Pick a category and let's play."

	textAlreadyRegistered = "Welcome back, %s! Pick a category to start a new puzzle."
	textNotRegistered     = "Let's get acquainted first. Send /start to register."

	textChooseCategory   = "Choose a puzzle category:"
	textChooseDifficulty = "Category: %s. Now choose the difficulty:"

	textPuzzleIssued = "Here is your %s puzzle (%s):\n\n%s\n\nYou have %d attempts. Send your answer as a plain message."

	textCorrect   = "%s\n\nYou earned %.2f points. Your rating is now %.2f."
	textWrong     = "%s\n\nAttempts left: %d. Minus 0.5 points, try again!"
	textExhausted = "%s\n\nNo attempts left. The answer was:\n%s"
	textCancelled = "Puzzle cancelled. The answer was:\n%s"

	textHintPrefix    = "Hint: %s\n\nEach hint reduces the reward for this puzzle."
	textHintsOver     = "You've already used all %d hints for this puzzle."
	textNoSession     = "You have no active puzzle. Pick a category to start one."
	textSessionBusy   = "You already have a puzzle in progress. Finish or cancel it first."
	textVerifierDown  = "I couldn't check your answer right now. Please send it again in a moment."
	textGeneratorDown = "I couldn't come up with a puzzle right now. Please try again in a moment."

	textAskFeedback    = "Tell me what you think about that puzzle."
	textFeedbackThanks = "Thanks, noted!"

	textUnknown        = "I didn't get that. Use the menu below or /help."
	textRateLimited    = "Easy there! One action per second, please."
	textAdminOnly      = "This command is for the bot admin only."
	textDailyReminder  = "A fresh puzzle is waiting for you! Send /puzzle and pick a category."
	textBroadcastDone  = "Broadcast finished. Notified %d of %d users."
	textLeaderboardTop = "Top players:"
)

func formatProfile(p users.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", mdSafe(p.User.FullName))
	if p.User.Hobby != "" {
		fmt.Fprintf(&b, "Hobby: %s\n", mdSafe(p.User.Hobby))
	}
	fmt.Fprintf(&b, "Rating: %.2f\n", p.User.Rating)
	fmt.Fprintf(&b, "Rank: #%d\n", p.Rank)
	fmt.Fprintf(&b, "Puzzles solved: %d", p.Solved)
	return b.String()
}

func formatLeaderboard(entries []repository.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "The leaderboard is empty so far. Be the first to solve a puzzle!"
	}
	var b strings.Builder
	b.WriteString(textLeaderboardTop)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s: %.2f", e.Position, e.FullName, e.Rating)
	}
	return b.String()
}

func categoryLabel(c puzzles.Category) string {
	switch c {
	case puzzles.CategoryLogic:
		return "🧠 Logic"
	case puzzles.CategoryCharades:
		return "🎭 Charades"
	case puzzles.CategoryRiddles:
		return "❓ Riddles"
	case puzzles.CategoryMath:
		return "➗ Math"
	case puzzles.CategoryAssociations:
		return "🔗 Associations"
	case puzzles.CategoryRandom:
		return "🎲 Random"
	}
	return string(c)
}

func difficultyLabel(d puzzles.Difficulty) string {
	switch d {
	case puzzles.DifficultyEasy:
		return "🟢 Easy (1 point)"
	case puzzles.DifficultyMedium:
		return "🟡 Medium (2 points)"
	case puzzles.DifficultyHard:
		return "🔴 Hard (3 points)"
	}
	return string(d)
}
