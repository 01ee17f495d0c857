package bot

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/puzzlebot/core/telegram/helpers"
)

// registrationGate blocks every interaction except /start until the user has
// registered. The registration dialog itself passes through the FSM.
func (h *handlers) registrationGate(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		if strings.HasPrefix(strings.TrimSpace(c.Text()), "/start") {
			return next(c)
		}
		st := h.fsm.GetState(sender.ID)
		if st == stateRegisterName || st == stateRegisterHobby {
			return next(c)
		}

		ctx := tghelpers.BuildContext(c)
		registered, err := h.users.IsRegistered(ctx, sender.ID)
		if err != nil {
			return err
		}
		if !registered {
			if c.Callback() != nil {
				_ = c.Respond()
			}
			return tghelpers.SendText(c, textNotRegistered)
		}
		return next(c)
	}
}
