package notify

import (
	"context"
	"sync"
	"time"

	logx "jarvis/pkg/logx"
)

// Config controls the notification fan-out.
type Config struct {
	Desktop  DesktopConfig
	Telegram *TelegramConfig // nil disables the channel
}

type DesktopConfig struct {
	Enabled bool
	Timeout time.Duration // toast display time; 0 means the platform default
	Sound   bool
}

type TelegramConfig struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

// channel is one delivery target. Implementations must be safe for
// concurrent use.
type channel interface {
	name() string
	send(ctx context.Context, title, message string) error
}

// Service fans a notification out to every enabled channel.
type Service struct {
	mu       sync.Mutex
	log      logx.Logger
	channels []channel
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log}
	s.Apply(cfg)
	return s
}

// Apply rebuilds the channel list from cfg. Safe to call on config reload.
func (s *Service) Apply(cfg Config) {
	var chans []channel
	if cfg.Desktop.Enabled {
		chans = append(chans, newDesktopChannel(cfg.Desktop))
	}
	if tg := cfg.Telegram; tg != nil && tg.Enabled {
		ch, err := newTelegramChannel(*tg, s.log)
		if err != nil {
			s.log.Warn("telegram notify channel unavailable", logx.Err(err))
		} else {
			chans = append(chans, ch)
		}
	}

	s.mu.Lock()
	s.channels = chans
	s.mu.Unlock()
}

// Push delivers to every channel. Failures are logged and swallowed: by the
// time Push runs, the in-app message has already reached the user, so the
// toast and remote channels are purely additive.
func (s *Service) Push(ctx context.Context, title, message string) error {
	s.mu.Lock()
	chans := s.channels
	s.mu.Unlock()

	for _, ch := range chans {
		if err := ch.send(ctx, title, message); err != nil {
			s.log.Warn("notification delivery failed",
				logx.String("channel", ch.name()), logx.Err(err))
		} else {
			s.log.Debug("notification delivered", logx.String("channel", ch.name()))
		}
	}
	return nil
}
