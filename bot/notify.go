package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// botNotifier delivers scheduler messages through the live bot instance.
type botNotifier struct {
	bot *tele.Bot
}

func (n *botNotifier) Notify(_ context.Context, userID int64, text string) error {
	_, err := n.bot.Send(&tele.User{ID: userID}, text)
	return err
}
