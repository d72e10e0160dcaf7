// Package router turns free-form user input into executed assistant actions.
// The language model is asked for a single strict JSON object naming an
// action; the router validates it and dispatches to the reminder scheduler or
// the OS action layer.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jarvis/internal/actions"
	"jarvis/internal/agenda"
	"jarvis/internal/config"
	"jarvis/internal/llm"
	"jarvis/internal/reminder"
	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

// Router resolves user input to a reply. LLM calls and OS side effects both
// happen inside Handle.
type Router struct {
	provider llm.Provider
	sched    *reminder.Scheduler
	acts     *actions.Service
	log      logx.Logger

	// speedTimeout bounds the speed test action.
	speedTimeout time.Duration
}

func New(provider llm.Provider, sched *reminder.Scheduler, acts *actions.Service, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{
		provider:     provider,
		sched:        sched,
		acts:         acts,
		log:          log,
		speedTimeout: 2 * time.Minute,
	}
}

// Handle asks the model to classify the input and executes the result.
func (r *Router) Handle(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	if r.provider == nil {
		return "", errors.New("no language model configured, set llm.api_key")
	}

	raw, err := r.provider.Complete(ctx, systemPrompt(time.Now()), input)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}

	act, err := ParseAction(raw)
	if err != nil {
		r.log.Warn("model returned unparseable action", logx.String("raw", truncate(raw, 200)), logx.Err(err))
		// Degrade to chat: show the model's text rather than an error.
		return strings.TrimSpace(raw), nil
	}
	r.log.Debug("action resolved", logx.String("action", act.Action))
	return r.Dispatch(ctx, act)
}

// Dispatch executes a parsed action and returns the user-facing reply.
func (r *Router) Dispatch(ctx context.Context, act Action) (string, error) {
	switch act.Action {
	case ActionReminderAdd:
		return r.addReminder(ctx, act)
	case ActionReminderDelete:
		if act.ID <= 0 {
			return "", fmt.Errorf("which reminder? a positive id is required")
		}
		if err := r.sched.Remove(ctx, act.ID); err != nil {
			return "", fmt.Errorf("delete reminder %d: %w", act.ID, err)
		}
		return fmt.Sprintf("Reminder #%d removed.", act.ID), nil
	case ActionReminderClear:
		if err := r.sched.ClearAll(ctx); err != nil {
			return "", fmt.Errorf("clear reminders: %w", err)
		}
		return "All reminders cleared.", nil
	case ActionReminderList:
		tasks, err := r.sched.List(ctx)
		if err != nil {
			return "", fmt.Errorf("list reminders: %w", err)
		}
		return listReply(tasks), nil
	case ActionOpenApp:
		return r.acts.OpenApp(ctx, act.App)
	case ActionOpenURL:
		return r.acts.OpenURL(ctx, act.URL)
	case ActionSystemInfo:
		return r.acts.SystemInfo(), nil
	case ActionSpeedTest:
		sctx, cancel := context.WithTimeout(ctx, r.speedTimeout)
		defer cancel()
		res, err := r.acts.SpeedTest(sctx)
		if err != nil {
			return "", fmt.Errorf("speed test: %w", err)
		}
		return res.String(), nil
	case ActionScreenshot:
		path, err := r.acts.Screenshot(ctx)
		if err != nil {
			return "", fmt.Errorf("screenshot: %w", err)
		}
		return "Saved screenshot to " + path + ".", nil
	case ActionQuick:
		return r.acts.Quick(ctx, act.Name)
	case ActionChat:
		return act.Reply, nil
	default:
		return "", fmt.Errorf("model produced unknown action %q", act.Action)
	}
}

func (r *Router) addReminder(ctx context.Context, act Action) (string, error) {
	if !config.ValidHHMM(act.Time) {
		return "", fmt.Errorf("invalid reminder time %q, expected 24h HH:MM", act.Time)
	}
	task, armed, err := r.sched.Add(ctx, act.Description, act.Time)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return "", errors.New("reminders need persistence, enable storage in the config")
		}
		return "", fmt.Errorf("add reminder: %w", err)
	}
	if !armed {
		return fmt.Sprintf("Reminder #%d saved for %s, but that time has already passed today so it will not fire.",
			task.ID, task.Time), nil
	}
	return fmt.Sprintf("Reminder #%d set: %s at %s.", task.ID, task.Description, task.Time), nil
}

func listReply(tasks []storage.Task) string {
	if len(tasks) == 0 {
		return "No reminders scheduled."
	}
	return agenda.Digest(tasks)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
