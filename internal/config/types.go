package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Storage holds the durable task store settings.
	// If omitted, tasks are kept in the default sqlite database.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Scheduler controls reminder timing behavior.
	Scheduler SchedulerConfig `json:"scheduler"`

	LLM    LLMConfig     `json:"llm"`
	Notify NotifyConfig  `json:"notify"`
	Agenda *AgendaConfig `json:"agenda,omitempty"`

	// Actions configures the shell-backed assistant actions.
	Actions ActionsConfig `json:"actions"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the task store driver.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file":   dependency-free jsonl backend
//   - "none":   persistence disabled; reminders do not survive restarts
type StorageConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
	// BusyTimeout is a Go duration string (sqlite only, e.g. "5s").
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type SchedulerConfig struct {
	// Timezone is an IANA TZ name (e.g. "Asia/Jakarta").
	// Empty means the system local zone.
	Timezone string `json:"timezone,omitempty"`
}

type LLMConfig struct {
	Provider string `json:"provider,omitempty"` // only "deepseek" currently
	APIKey   string `json:"api_key"`
	Model    string `json:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
	// Timeout is a Go duration string (e.g. "30s").
	Timeout     string  `json:"timeout,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	// RatePerMin caps outgoing API calls. 0 means no limit.
	RatePerMin int `json:"rate_per_min,omitempty"`
}

type NotifyConfig struct {
	// Desktop toggles OS toast notifications (notify-send / osascript / powershell).
	Desktop DesktopNotifyConfig `json:"desktop"`
	// Telegram optionally forwards reminders to a chat.
	Telegram *TelegramNotifyConfig `json:"telegram,omitempty"`
}

type DesktopNotifyConfig struct {
	Enabled bool `json:"enabled"`
	// Timeout is the toast display time in a Go duration string (e.g. "10s").
	Timeout string `json:"timeout,omitempty"`
	Sound   bool   `json:"sound,omitempty"`
}

type TelegramNotifyConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

type AgendaConfig struct {
	Enabled bool `json:"enabled"`
	// At is the daily digest time in zero-padded 24h "HH:MM".
	At string `json:"at"`
}

type ActionsConfig struct {
	// ScreenshotDir is where screenshot captures land. Empty means the
	// user cache dir.
	ScreenshotDir string `json:"screenshot_dir,omitempty"`
	// Quick maps a macro name to the shell command it runs.
	Quick map[string]string `json:"quick,omitempty"`
}

// Validate performs cross-field checks that the strict decoder cannot express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	if _, err := ParseDurationField("llm.timeout", c.LLM.Timeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("notify.desktop.timeout", c.Notify.Desktop.Timeout); err != nil {
		return err
	}
	if tg := c.Notify.Telegram; tg != nil && tg.Enabled {
		if strings.TrimSpace(tg.Token) == "" {
			return errors.New("notify.telegram.token is required when enabled")
		}
		if tg.ChatID == 0 {
			return errors.New("notify.telegram.chat_id is required when enabled")
		}
	}
	if a := c.Agenda; a != nil && a.Enabled {
		if !ValidHHMM(a.At) {
			return fmt.Errorf("agenda.at: invalid time %q, expected HH:MM", a.At)
		}
	}
	return nil
}

// ValidHHMM reports whether s is a zero-padded 24-hour "HH:MM" clock time.
func ValidHHMM(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h <= 23 && m <= 59
}
