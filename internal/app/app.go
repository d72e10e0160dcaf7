// Package app assembles the assistant: config, logging, storage, the
// reminder scheduler, notification fan-out, the language model router, and
// the terminal front end.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"jarvis/internal/actions"
	"jarvis/internal/agenda"
	"jarvis/internal/config"
	"jarvis/internal/llm"
	"jarvis/internal/notify"
	"jarvis/internal/reminder"
	"jarvis/internal/repl"
	"jarvis/internal/router"
	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	store     storage.TaskStore
	notifySvc *notify.Service
	sched     *reminder.Scheduler
	provider  llm.Provider
	acts      *actions.Service
	agendaSvc *agenda.Service
	ui        *repl.REPL

	watchCancel context.CancelFunc
	wg          sync.WaitGroup
}

// New loads the config and builds every component. Nothing is started yet.
func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(loggingConfig(cfg))
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	store, err := storage.Open(storageConfig(cfg), log.With(logx.String("comp", "storage")))
	if err != nil {
		logSvc.Close()
		return nil, fmt.Errorf("open task store: %w", err)
	}

	notifySvc := notify.New(notifyConfig(cfg), log.With(logx.String("comp", "notify")))
	sched := reminder.New(
		reminder.Config{Timezone: cfg.Scheduler.Timezone},
		store, notifySvc, log.With(logx.String("comp", "reminder")))

	var provider llm.Provider
	if cfg.LLM.APIKey != "" {
		provider, err = llm.New(llmConfig(cfg))
		if err != nil {
			if store != nil {
				store.Close()
			}
			logSvc.Close()
			return nil, fmt.Errorf("init language model: %w", err)
		}
	} else {
		log.Warn("llm.api_key is empty, assistant commands disabled")
	}

	acts := actions.New(actionsConfig(cfg), log.With(logx.String("comp", "actions")))
	rt := router.New(provider, sched, acts, log.With(logx.String("comp", "router")))

	var agendaSvc *agenda.Service
	if cfg.Agenda != nil {
		agendaSvc = agenda.New(agendaConfig(cfg), store, notifySvc,
			log.With(logx.String("comp", "agenda")))
	}

	ui, err := repl.New(rt, historyPath(), log.With(logx.String("comp", "repl")))
	if err != nil {
		if provider != nil {
			provider.Close()
		}
		if store != nil {
			store.Close()
		}
		logSvc.Close()
		return nil, err
	}

	return &App{
		cfgMgr:    mgr,
		logSvc:    logSvc,
		log:       log,
		store:     store,
		notifySvc: notifySvc,
		sched:     sched,
		provider:  provider,
		acts:      acts,
		agendaSvc: agendaSvc,
		ui:        ui,
	}, nil
}

// Start arms persisted reminders, starts the digest job and the config
// watcher, and tells systemd we are ready when running as a unit.
func (a *App) Start(ctx context.Context) error {
	if err := a.sched.Start(ctx, a.ui.Notify); err != nil {
		return err
	}
	if a.agendaSvc != nil {
		if err := a.agendaSvc.Start(); err != nil {
			a.log.Warn("daily digest not started", logx.Err(err))
		}
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	a.watchCancel = cancel
	updates := a.cfgMgr.Subscribe(1)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.cfgMgr.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			a.log.Warn("config watcher stopped", logx.Err(err))
		}
	}()
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-watchCtx.Done():
				a.cfgMgr.Unsubscribe(updates)
				return
			case cfg := <-updates:
				if cfg != nil {
					a.applyReload(watchCtx, cfg)
				}
			}
		}
	}()

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify ready sent")
	}

	a.log.Info("assistant started", logx.Int("pending_reminders", a.sched.Pending()))
	return nil
}

// Run blocks inside the REPL until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.ui.Run(ctx)
}

// Stop shuts everything down in reverse dependency order.
func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.watchCancel != nil {
		a.watchCancel()
	}
	a.wg.Wait()

	if a.agendaSvc != nil {
		a.agendaSvc.Stop(ctx)
	}
	a.sched.Stop()
	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.log.Warn("closing llm provider failed", logx.Err(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing task store failed", logx.Err(err))
		}
	}
	a.log.Info("assistant stopped")
	return a.logSvc.Close()
}

// applyReload pushes a validated config change into the running services.
func (a *App) applyReload(ctx context.Context, cfg *config.Config) {
	a.logSvc.Apply(loggingConfig(cfg))
	a.notifySvc.Apply(notifyConfig(cfg))
	a.acts.Apply(actionsConfig(cfg))
	a.sched.Apply(ctx, reminder.Config{Timezone: cfg.Scheduler.Timezone})
	if a.agendaSvc != nil {
		a.agendaSvc.Apply(agendaConfig(cfg))
	}
	a.log.Info("config reloaded")
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "jarvis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}
