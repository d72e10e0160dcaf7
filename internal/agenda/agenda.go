// Package agenda delivers a daily digest of the reminders still on file,
// pushed as a notification at a configured local time.
package agenda

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jarvis/internal/config"
	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

type Config struct {
	Enabled  bool
	Time     string // HH:MM, local to Timezone
	Timezone string
}

// Sink is where the digest is delivered.
type Sink interface {
	Push(ctx context.Context, title, message string) error
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	c   *cron.Cron

	store storage.TaskStore
	sink  Sink
	log   logx.Logger
}

func New(cfg Config, store storage.TaskStore, sink Sink, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, store: store, sink: sink, log: log}
}

// Start registers the daily digest job. No-op when disabled or when the
// store is absent.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Service) startLocked() error {
	if s.c != nil || !s.cfg.Enabled || s.store == nil {
		return nil
	}
	hour, minute, err := digestTime(s.cfg.Time)
	if err != nil {
		return err
	}
	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			s.log.Warn("invalid agenda timezone, using local", logx.String("tz", tz), logx.Err(err))
		} else {
			loc = l
		}
	}

	c := cron.New(cron.WithLocation(loc))
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := c.AddFunc(spec, s.deliver); err != nil {
		return fmt.Errorf("register digest job: %w", err)
	}
	c.Start()
	s.c = c
	s.log.Info("daily digest armed", logx.String("at", s.cfg.Time), logx.String("tz", loc.String()))
	return nil
}

// Stop halts digest delivery. Safe to call when never started.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// Apply restarts the digest job when the schedule or timezone changed.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == s.cfg {
		return
	}
	s.cfg = cfg
	if s.c != nil {
		s.c.Stop()
		s.c = nil
	}
	if err := s.startLocked(); err != nil {
		s.log.Error("digest restart failed", logx.Err(err))
	}
}

func (s *Service) deliver() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	tasks, err := s.store.GetTasks(ctx)
	if err != nil {
		s.log.Warn("digest skipped, could not list reminders", logx.Err(err))
		return
	}
	msg := Digest(tasks)
	if err := s.sink.Push(ctx, "Today's agenda", msg); err != nil {
		s.log.Warn("digest delivery failed", logx.Err(err))
	}
}

// Digest renders the reminder list as a short human-readable summary.
func Digest(tasks []storage.Task) string {
	if len(tasks) == 0 {
		return "No reminders scheduled for today."
	}
	sorted := make([]storage.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].ID < sorted[j].ID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%d reminder(s) today:\n", len(sorted))
	for _, t := range sorted {
		fmt.Fprintf(&b, "  %s  %s\n", t.Time, t.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func digestTime(s string) (hour, minute int, err error) {
	if !config.ValidHHMM(s) {
		return 0, 0, fmt.Errorf("invalid digest time %q, want HH:MM", s)
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	return hour, minute, nil
}
