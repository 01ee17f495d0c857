package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/puzzlebot/core/telegram/helpers"
	"github.com/m3rciful/puzzlebot/core/telegram/state"
	"github.com/m3rciful/puzzlebot/core/telegram/ui"
	"github.com/m3rciful/puzzlebot/repository"
	"github.com/m3rciful/puzzlebot/services/puzzles"
	"github.com/m3rciful/puzzlebot/services/users"
)

// Conversation states.
const (
	stateRegisterName    state.State = "register_name"
	stateRegisterHobby   state.State = "register_hobby"
	stateSolvingPuzzle   state.State = "solving_puzzle"
	stateWritingFeedback state.State = "writing_feedback"
)

const tempKeyFullName = "register_full_name"

// handlers binds Telegram updates to the domain services.
type handlers struct {
	cfg     *Config
	users   *users.Service
	puzzles *puzzles.Service
	fsm     state.Manager
}

func newHandlers(cfg *Config, usersSvc *users.Service, puzzlesSvc *puzzles.Service, fsm state.Manager) *handlers {
	h := &handlers{cfg: cfg, users: usersSvc, puzzles: puzzlesSvc, fsm: fsm}
	state.RegisterHandler(stateRegisterName, h.registerName)
	state.RegisterHandler(stateRegisterHobby, h.registerHobby)
	state.RegisterHandler(stateSolvingPuzzle, h.answerMessage)
	state.RegisterHandler(stateWritingFeedback, h.feedbackMessage)
	return h
}

// start greets registered users or begins the registration dialog.
func (h *handlers) start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	u, err := tghelpers.CurrentUser(ctx, h.users, userID)
	switch {
	case err == nil:
		h.fsm.Clear(userID)
		return tghelpers.SendMD(c, fmt.Sprintf(textAlreadyRegistered, mdSafe(u.FullName)), mainMenuKeyboard())
	case errors.Is(err, repository.ErrUserNotFound):
		h.fsm.SetState(userID, stateRegisterName)
		return tghelpers.SendText(c, textAskName)
	default:
		return err
	}
}

func (h *handlers) registerName(c tele.Context) error {
	userID := c.Sender().ID
	name := strings.TrimSpace(c.Text())
	if name == "" {
		return tghelpers.SendText(c, textAskName)
	}
	h.fsm.SetTemp(userID, tempKeyFullName, name)
	h.fsm.SetState(userID, stateRegisterHobby)
	return tghelpers.SendText(c, fmt.Sprintf(textAskHobby, name))
}

func (h *handlers) registerHobby(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	hobby := strings.TrimSpace(c.Text())
	nameVal, ok := h.fsm.GetTemp(userID, tempKeyFullName)
	name, _ := nameVal.(string)
	if !ok || name == "" {
		// The dialog lost its first step, restart cleanly.
		h.fsm.Clear(userID)
		h.fsm.SetState(userID, stateRegisterName)
		return tghelpers.SendText(c, textAskName)
	}

	if err := h.users.Register(ctx, userID, name, hobby); err != nil && !errors.Is(err, repository.ErrUserExists) {
		return err
	}
	h.fsm.Clear(userID)
	return tghelpers.SendMD(c, fmt.Sprintf(textWelcome, mdSafe(name)), mainMenuKeyboard())
}

// profile renders the user's rating, rank, and solved count.
func (h *handlers) profile(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	p, err := h.users.GetProfile(ctx, c.Sender().ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return tghelpers.SendText(c, textNotRegistered)
		}
		return err
	}
	return tghelpers.SendMD(c, formatProfile(p))
}

// leaderboard shows the top rated players.
func (h *handlers) leaderboard(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	entries, err := h.users.Leaderboard(ctx, h.cfg.Puzzle.LeaderboardSize)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, formatLeaderboard(entries))
}

// help lists available commands.
func (h *handlers) help(c tele.Context) error {
	return tghelpers.SendText(c,
		"/puzzle: start a new puzzle\n"+
			"/profile: your rating and stats\n"+
			"/leaderboard: top players\n"+
			"/help: this message")
}

func (h *handlers) unknownText(c tele.Context) error {
	return tghelpers.SendText(c, textUnknown)
}

var _ ui.FallbackProvider = (*handlers)(nil)

// UnknownText handles text that matched no command or dialog.
func (h *handlers) UnknownText() tele.HandlerFunc { return h.unknownText }

// UnknownDocument handles unexpected file uploads.
func (h *handlers) UnknownDocument() tele.HandlerFunc { return h.unknownText }

// UnknownCallback answers presses of buttons from stale keyboards.
func (h *handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textUnknown})
	}
}
