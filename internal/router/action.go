package router

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Action is the structured command the model must answer with.
type Action struct {
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time,omitempty"` // HH:MM, 24h, zero-padded
	ID          int64  `json:"id,omitempty"`
	App         string `json:"app,omitempty"`
	URL         string `json:"url,omitempty"`
	Name        string `json:"name,omitempty"`
	Reply       string `json:"reply,omitempty"`
}

const (
	ActionReminderAdd    = "reminder_add"
	ActionReminderDelete = "reminder_delete"
	ActionReminderClear  = "reminder_clear"
	ActionReminderList   = "reminder_list"
	ActionOpenApp        = "open_app"
	ActionOpenURL        = "open_url"
	ActionSystemInfo     = "system_info"
	ActionSpeedTest      = "speed_test"
	ActionScreenshot     = "screenshot"
	ActionQuick          = "quick_action"
	ActionChat           = "chat"
)

// ParseAction extracts the JSON action from a model response. Models wrap
// JSON in markdown fences or prose often enough that we scan for the
// outermost object instead of decoding the raw string.
func ParseAction(raw string) (Action, error) {
	body := extractJSON(raw)
	if body == "" {
		return Action{}, fmt.Errorf("no JSON object in response")
	}

	var act Action
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&act); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	if strings.TrimSpace(act.Action) == "" {
		return Action{}, fmt.Errorf(`response lacks an "action" field`)
	}
	act.Action = strings.ToLower(strings.TrimSpace(act.Action))
	return act, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if fenced, ok := stripFence(raw); ok {
		raw = fenced
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func stripFence(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "```") {
		return "", false
	}
	raw = strings.TrimPrefix(raw, "```")
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(raw, "```"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw), true
}

// systemPrompt carries the action contract plus the current local time so the
// model can resolve phrases like "in ten minutes".
func systemPrompt(now time.Time) string {
	return fmt.Sprintf(`You are Jarvis, a desktop assistant. The current local time is %s on %s.

Answer with EXACTLY ONE JSON object and nothing else. No markdown, no prose outside the object.

Schema:
  {"action": "<name>", ...fields}

Actions and their fields:
  reminder_add     description (string), time (24h "HH:MM", zero-padded)
  reminder_delete  id (number)
  reminder_clear   (no fields)
  reminder_list    (no fields)
  open_app         app (string, application name)
  open_url         url (string)
  system_info      (no fields)
  speed_test       (no fields)
  screenshot       (no fields)
  quick_action     name (string, macro name)
  chat             reply (string, your conversational answer)

Rules:
  - Reminders are same-day only. Convert relative times ("in 20 minutes") to an absolute HH:MM using the current time above.
  - If the request maps to no other action, use "chat" and put your answer in "reply".
  - Never invent reminder ids; only delete an id the user gave you.`,
		now.Format("15:04"), now.Format("Monday, 2 January 2006"))
}
