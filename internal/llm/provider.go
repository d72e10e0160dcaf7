// Package llm wraps the hosted large-language-model API that turns free-form
// commands into structured actions. Understanding the text is entirely the
// model's job; this package only moves messages.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and tunes a provider.
type Config struct {
	Provider    string // only "deepseek" currently
	APIKey      string
	Model       string
	BaseURL     string // non-empty forces the direct HTTP path
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	RatePerMin  int // 0 means unlimited
}

// Provider is a hosted chat-completion backend.
type Provider interface {
	// Complete sends one system+user exchange and returns the assistant text.
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
	Close() error
}

// New builds the configured provider.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "deepseek":
		return newDeepSeek(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
