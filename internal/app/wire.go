package app

import (
	"os"
	"path/filepath"
	"time"

	"jarvis/internal/actions"
	"jarvis/internal/agenda"
	"jarvis/internal/config"
	"jarvis/internal/llm"
	"jarvis/internal/notify"
	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

// Mapping from the file-level config structs to per-service configs. Duration
// strings were already validated by config.Validate, so parse errors here
// fall back to defaults.

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func storageConfig(cfg *config.Config) storage.Config {
	sc := storage.Config{Driver: "sqlite", Path: defaultDBPath()}
	if cfg.Storage == nil {
		return sc
	}
	if cfg.Storage.Driver != "" {
		sc.Driver = cfg.Storage.Driver
	}
	if cfg.Storage.Path != "" {
		sc.Path = cfg.Storage.Path
	}
	sc.BusyTimeout, _ = config.ParseDurationOrDefault(
		"storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	return sc
}

func notifyConfig(cfg *config.Config) notify.Config {
	timeout, _ := config.ParseDurationOrDefault(
		"notify.desktop.timeout", cfg.Notify.Desktop.Timeout, 0)
	nc := notify.Config{
		Desktop: notify.DesktopConfig{
			Enabled: cfg.Notify.Desktop.Enabled,
			Timeout: timeout,
			Sound:   cfg.Notify.Desktop.Sound,
		},
	}
	if tg := cfg.Notify.Telegram; tg != nil {
		nc.Telegram = &notify.TelegramConfig{
			Enabled:    tg.Enabled,
			Token:      tg.Token,
			ChatID:     tg.ChatID,
			RatePerSec: tg.RatePerSec,
		}
	}
	return nc
}

func llmConfig(cfg *config.Config) llm.Config {
	timeout, _ := config.ParseDurationOrDefault("llm.timeout", cfg.LLM.Timeout, 30*time.Second)
	return llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		RatePerMin:  cfg.LLM.RatePerMin,
	}
}

func actionsConfig(cfg *config.Config) actions.Config {
	return actions.Config{
		ScreenshotDir: cfg.Actions.ScreenshotDir,
		Quick:         cfg.Actions.Quick,
	}
}

func agendaConfig(cfg *config.Config) agenda.Config {
	ac := agenda.Config{Timezone: cfg.Scheduler.Timezone}
	if cfg.Agenda != nil {
		ac.Enabled = cfg.Agenda.Enabled
		ac.Time = cfg.Agenda.At
	}
	return ac
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tasks.db"
	}
	dir = filepath.Join(dir, "jarvis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "tasks.db"
	}
	return filepath.Join(dir, "tasks.db")
}
