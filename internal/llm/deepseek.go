package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
	"golang.org/x/time/rate"
)

const defaultModel = "deepseek-chat"

// deepSeekProvider implements Provider for the DeepSeek API.
//
// The official SDK covers the default endpoint; a custom BaseURL (proxies,
// compatible gateways) switches to a direct HTTP call with the same wire
// format.
type deepSeekProvider struct {
	cfg     Config
	client  deepseek.Client
	http    *http.Client
	limiter *rate.Limiter
}

func newDeepSeek(cfg Config) (*deepSeekProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("deepseek api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	p := &deepSeekProvider{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RatePerMin > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMin)/60.0), cfg.RatePerMin)
	}
	if cfg.BaseURL == "" {
		client, err := deepseek.NewClient(cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("deepseek client: %w", err)
		}
		p.client = client
	}
	return p, nil
}

func (p *deepSeekProvider) Name() string { return "deepseek" }

func (p *deepSeekProvider) Close() error { return nil }

func (p *deepSeekProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if p.cfg.BaseURL != "" {
		return p.completeHTTP(ctx, system, user)
	}
	return p.completeSDK(ctx, system, user)
}

func (p *deepSeekProvider) completeSDK(ctx context.Context, system, user string) (string, error) {
	messages := make([]*request.Message, 0, 2)
	if system != "" {
		messages = append(messages, &request.Message{Role: "system", Content: system})
	}
	messages = append(messages, &request.Message{Role: "user", Content: user})

	var temp *float32
	if p.cfg.Temperature > 0 {
		t := float32(p.cfg.Temperature)
		temp = &t
	}

	resp, err := p.client.CallChatCompletionsChat(ctx, &request.ChatCompletionsRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: temp,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("deepseek request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("deepseek returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Wire types for the direct HTTP path.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *deepSeekProvider) completeHTTP(ctx context.Context, system, user string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	var temp *float32
	if p.cfg.Temperature > 0 {
		t := float32(p.cfg.Temperature)
		temp = &t
	}

	body, err := json.Marshal(chatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: temp,
	})
	if err != nil {
		return "", err
	}

	url := p.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(respBody, &e) == nil && e.Error.Message != "" {
			return "", fmt.Errorf("deepseek: %s", e.Error.Message)
		}
		return "", fmt.Errorf("deepseek: unexpected status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("deepseek: bad response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("deepseek returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
