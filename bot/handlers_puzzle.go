package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/puzzlebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/puzzlebot/core/telegram/helpers"
	"github.com/m3rciful/puzzlebot/llm"
	"github.com/m3rciful/puzzlebot/services/puzzles"
)

// newPuzzle opens the category picker, or reminds about the active session.
func (h *handlers) newPuzzle(c tele.Context) error {
	sess, ok := h.puzzles.Active(c.Sender().ID)
	if ok && sess.Solving() {
		return tghelpers.SendText(c, textSessionBusy)
	}
	return tghelpers.SendMD(c, textChooseCategory, categoryKeyboard())
}

// categorySelected pins the category and asks for the difficulty.
func (h *handlers) categorySelected(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	category := puzzles.Category(callbacks.CallbackPayload(c))

	resolved, err := h.puzzles.SelectCategory(ctx, c.Sender().ID, category)
	if err != nil {
		if errors.Is(err, puzzles.ErrAlreadyActive) {
			return tghelpers.SendText(c, textSessionBusy)
		}
		return err
	}
	return tghelpers.EditOrSendMD(c, fmt.Sprintf(textChooseDifficulty, categoryLabel(resolved)), difficultyKeyboard())
}

// difficultySelected generates the puzzle and starts the solving dialog.
func (h *handlers) difficultySelected(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	difficulty := puzzles.Difficulty(callbacks.CallbackPayload(c))

	issued, err := h.puzzles.SelectDifficulty(ctx, userID, difficulty)
	if err != nil {
		switch {
		case errors.Is(err, puzzles.ErrNotInSession):
			return tghelpers.SendMD(c, textNoSession, categoryKeyboard())
		case errors.Is(err, puzzles.ErrAlreadyActive):
			return tghelpers.SendText(c, textSessionBusy)
		default:
			var unavailable *llm.UnavailableError
			if errors.As(err, &unavailable) {
				_ = tghelpers.SendText(c, textGeneratorDown)
			}
			return err
		}
	}

	h.fsm.SetState(userID, stateSolvingPuzzle)
	text := fmt.Sprintf(textPuzzleIssued,
		strings.ToLower(string(issued.Difficulty)),
		strings.ToLower(string(issued.Category)),
		mdSafe(issued.PuzzleText),
		issued.AttemptsLeft,
	)
	return tghelpers.EditOrSendMD(c, text, solvingKeyboard())
}

// answerMessage grades a plain-text answer while the solving dialog is active.
func (h *handlers) answerMessage(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	answer := strings.TrimSpace(c.Text())
	if answer == "" {
		return nil
	}

	out, err := h.puzzles.SubmitAnswer(ctx, userID, answer)
	if err != nil {
		switch {
		case errors.Is(err, puzzles.ErrVerifierUnavailable):
			return tghelpers.SendText(c, textVerifierDown)
		case errors.Is(err, puzzles.ErrNotInSession):
			h.fsm.ClearState(userID)
			return tghelpers.SendMD(c, textNoSession, categoryKeyboard())
		default:
			return err
		}
	}

	switch {
	case out.Correct:
		h.fsm.ClearState(userID)
		return tghelpers.SendMD(c,
			fmt.Sprintf(textCorrect, mdSafe(out.Explanation), out.Award, out.Rating),
			finishedKeyboard())
	case out.Exhausted:
		h.fsm.ClearState(userID)
		return tghelpers.SendMD(c,
			fmt.Sprintf(textExhausted, mdSafe(out.Explanation), mdSafe(out.Reveal)),
			finishedKeyboard())
	default:
		return tghelpers.SendMD(c,
			fmt.Sprintf(textWrong, mdSafe(out.Explanation), out.AttemptsLeft),
			solvingKeyboard())
	}
}

// hintRequested issues one hint for the active puzzle.
func (h *handlers) hintRequested(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	hint, err := h.puzzles.RequestHint(ctx, c.Sender().ID)
	if err != nil {
		switch {
		case errors.Is(err, puzzles.ErrHintsExhausted):
			return tghelpers.SendText(c, fmt.Sprintf(textHintsOver, puzzles.MaxHints))
		case errors.Is(err, puzzles.ErrNotInSession):
			return tghelpers.SendMD(c, textNoSession, categoryKeyboard())
		default:
			var unavailable *llm.UnavailableError
			if errors.As(err, &unavailable) {
				_ = tghelpers.SendText(c, textGeneratorDown)
			}
			return err
		}
	}
	return tghelpers.SendMD(c, fmt.Sprintf(textHintPrefix, mdSafe(hint)), solvingKeyboard())
}

// cancelPuzzle abandons the active puzzle and reveals the answer.
func (h *handlers) cancelPuzzle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	reveal, err := h.puzzles.Cancel(ctx, userID)
	if err != nil {
		if errors.Is(err, puzzles.ErrNotInSession) {
			h.fsm.ClearState(userID)
			return tghelpers.SendMD(c, textNoSession, categoryKeyboard())
		}
		return err
	}
	h.fsm.ClearState(userID)
	return tghelpers.SendMD(c, fmt.Sprintf(textCancelled, mdSafe(reveal)), finishedKeyboard())
}

// feedbackRequested switches the dialog into feedback collection.
func (h *handlers) feedbackRequested(c tele.Context) error {
	h.fsm.SetState(c.Sender().ID, stateWritingFeedback)
	return tghelpers.SendText(c, textAskFeedback)
}

// feedbackMessage stores free-text feedback and closes the dialog.
func (h *handlers) feedbackMessage(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return tghelpers.SendText(c, textAskFeedback)
	}
	if err := h.puzzles.SubmitFeedback(ctx, userID, text); err != nil {
		return err
	}
	h.fsm.ClearState(userID)
	return tghelpers.SendMD(c, textFeedbackThanks, mainMenuKeyboard())
}
