package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	logx "jarvis/pkg/logx"
)

// telegramChannel forwards reminders to a chat. Send-only: the bot never
// polls for updates.
type telegramChannel struct {
	bot     *tele.Bot
	chat    *tele.Chat
	limiter *rate.Limiter
	log     logx.Logger
}

func newTelegramChannel(cfg TelegramConfig, log logx.Logger) (*telegramChannel, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	// No Poller: this bot only sends.
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &telegramChannel{
		bot:     b,
		chat:    &tele.Chat{ID: cfg.ChatID},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

func (t *telegramChannel) name() string { return "telegram" }

func (t *telegramChannel) send(ctx context.Context, title, message string) error {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := t.limiter.Wait(wctx); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, title+"\n"+message, &tele.SendOptions{
		DisableWebPagePreview: true,
	})
	return err
}
