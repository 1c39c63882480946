package notify

import (
	"context"
	"fmt"
	"time"

	"mxshs/livescores/src/domain"
	"mxshs/livescores/src/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Min interval between two messages to the same chat, Telegram allows ~30/min.
const sendInterval = 2 * time.Second

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	bot     sender
	chatID  int64
	limiter *rate.Limiter
	log     *logger.Entry
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	return newTelegram(bot, chatID), nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:     bot,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(sendInterval), 1),
		log:     logger.GetLogger().WithComponent("notify"),
	}
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	t.log.WithField("chat_id", t.chatID).Debug("sent notification")
	return nil
}

// FormatResult renders a final score line, e.g. "FT: Kilkenny 2-20 Galway 1-18".
func FormatResult(u domain.UpdateRecord) string {
	return fmt.Sprintf("FT: %s %s %s %s", u.HomeTeam, u.HomeScore, u.AwayTeam, u.AwayScore)
}
