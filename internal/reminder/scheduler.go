package reminder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

type Config struct {
	// Timezone is an IANA TZ name (e.g. "Asia/Jakarta"). Empty means Local.
	Timezone string
}

// Sink delivers an OS-level notification for a fired reminder.
// Delivery failures are logged by the scheduler and never escalate.
type Sink interface {
	Push(ctx context.Context, title, message string) error
}

// canceller is the minimal timer capability the scheduler needs.
// *time.Timer satisfies it; tests substitute their own.
type canceller interface {
	Stop() bool
}

// Scheduler owns the id -> armed-timer map. It is the only component that
// deletes store rows as a side effect of firing; explicit deletes come from
// the command router.
type Scheduler struct {
	mu     sync.Mutex
	timers map[int64]canceller
	// gens guards against stale timer callbacks: a callback from a timer
	// that was since cancelled or replaced carries an old generation and is
	// ignored.
	gens map[int64]uint64
	loc  *time.Location

	store storage.TaskStore
	sink  Sink
	log   logx.Logger

	onNotify func(message string)

	// Clock and timer hooks; tests override them.
	now   func() time.Time
	after func(d time.Duration, fn func()) canceller
}

func New(cfg Config, store storage.TaskStore, sink Sink, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		timers: map[int64]canceller{},
		gens:   map[int64]uint64{},
		loc:    loadLocation(cfg.Timezone, log),
		store:  store,
		sink:   sink,
		log:    log,
		now:    time.Now,
		after: func(d time.Duration, fn func()) canceller {
			return time.AfterFunc(d, fn)
		},
	}
}

// Start registers the process-wide in-app notification callback, then loads
// every persisted task and attempts to schedule each. Call it exactly once at
// startup; calling it twice would double-arm timers for tasks already
// scheduled.
func (s *Scheduler) Start(ctx context.Context, onNotify func(message string)) error {
	s.mu.Lock()
	s.onNotify = onNotify
	s.mu.Unlock()

	if s.store == nil {
		s.log.Info("reminder scheduler started without storage")
		return nil
	}

	tasks, err := s.store.GetTasks(ctx)
	if err != nil {
		// Degraded start: timers for existing rows are lost until restart,
		// but new reminders still work.
		s.log.Warn("loading persisted reminders failed", logx.Err(err))
		return nil
	}

	armed := 0
	for _, t := range tasks {
		if s.Schedule(t) {
			armed++
		}
	}
	s.log.Info("reminder scheduler started",
		logx.Int("persisted", len(tasks)), logx.Int("armed", armed))
	return nil
}

// Schedule arms a one-shot timer for the task's HH:MM today, replacing any
// timer already armed for the same id. It reports whether a timer was armed;
// a task whose time has already passed today (or is exactly now) is silently
// skipped and its store row left untouched.
func (s *Scheduler) Schedule(t storage.Task) bool {
	h, m, err := ParseHHMM(t.Time)
	if err != nil {
		// Precondition violation; validation happens upstream.
		s.log.Warn("reminder has malformed time, not scheduling",
			logx.Int64("id", t.ID), logx.String("time", t.Time))
		return false
	}

	now := s.now().In(s.location())
	target := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !target.After(now) {
		// Single-day policy: past reminders are skipped, never rolled over.
		s.log.Debug("reminder time already passed today, skipping",
			logx.Int64("id", t.ID), logx.Time("target", target))
		return false
	}

	delay := target.Sub(now)
	id := t.ID
	task := t

	s.mu.Lock()
	// At-most-one-armed: cancel any existing timer for the same id.
	if old, ok := s.timers[id]; ok {
		_ = old.Stop()
		delete(s.timers, id)
	}
	gen := s.gens[id] + 1
	s.gens[id] = gen
	s.timers[id] = s.after(delay, func() { s.trigger(task, gen) })
	s.mu.Unlock()

	s.log.Debug("reminder armed",
		logx.Int64("id", id), logx.String("at", t.Time), logx.Duration("in", delay))
	return true
}

// trigger runs when an armed timer elapses. Later steps execute even if
// earlier ones fail: in-app callback, OS toast, store delete, map removal.
// Once entered the task is terminal; the same id can only come back as a
// brand-new task.
func (s *Scheduler) trigger(t storage.Task, gen uint64) {
	s.mu.Lock()
	if s.gens[t.ID] != gen {
		// Cancelled or replaced between firing and this callback; stale.
		s.mu.Unlock()
		return
	}
	onNotify := s.onNotify
	s.mu.Unlock()

	msg := fmt.Sprintf("Reminder: %s (%s)", t.Description, t.Time)

	if onNotify != nil {
		onNotify(msg)
	}

	if s.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.sink.Push(ctx, "Reminder", msg); err != nil {
			s.log.Warn("reminder toast failed", logx.Int64("id", t.ID), logx.Err(err))
		}
		cancel()
	}

	// Fire and forget: the user has been notified, a stale row only means it
	// reappears in the next listing.
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.DeleteTask(ctx, t.ID); err != nil {
			s.log.Warn("deleting fired reminder failed", logx.Int64("id", t.ID), logx.Err(err))
		}
		cancel()
	}

	// Idempotent map cleanup; a no-op when the entry is already gone or the
	// id was re-armed while delivery was in flight.
	s.mu.Lock()
	if s.gens[t.ID] == gen {
		delete(s.timers, t.ID)
		delete(s.gens, t.ID)
	}
	s.mu.Unlock()

	s.log.Info("reminder fired", logx.Int64("id", t.ID), logx.String("at", t.Time))
}

// Add writes a new task to the store, then schedules it. The store assigns
// the id; callers never invent one. The returned bool reports whether a timer
// was armed (false when the time already passed today).
func (s *Scheduler) Add(ctx context.Context, description, hhmm string) (storage.Task, bool, error) {
	if strings.TrimSpace(description) == "" {
		return storage.Task{}, false, fmt.Errorf("description required")
	}
	if _, _, err := ParseHHMM(hhmm); err != nil {
		return storage.Task{}, false, err
	}
	if s.store == nil {
		return storage.Task{}, false, storage.ErrDisabled
	}

	id, err := s.store.AddTask(ctx, description, hhmm)
	if err != nil {
		return storage.Task{}, false, err
	}
	t := storage.Task{ID: id, Description: description, Time: hhmm}
	return t, s.Schedule(t), nil
}

// Cancel stops the timer for id and removes the map entry. Cancelling an
// absent id is a no-op; callers need not know whether a reminder is still
// pending.
func (s *Scheduler) Cancel(id int64) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		_ = t.Stop()
		delete(s.timers, id)
	}
	delete(s.gens, id)
	s.mu.Unlock()
}

// Remove cancels the timer for id and deletes its row. Removing an id with
// no row or no timer is not an error.
func (s *Scheduler) Remove(ctx context.Context, id int64) error {
	s.Cancel(id)
	if s.store == nil {
		return nil
	}
	return s.store.DeleteTask(ctx, id)
}

// List returns the persisted tasks, armed or not.
func (s *Scheduler) List(ctx context.Context) ([]storage.Task, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetTasks(ctx)
}

// ClearAll cancels every armed timer, then deletes all rows. Timers go first
// so nothing fires against a row that is about to disappear.
func (s *Scheduler) ClearAll(ctx context.Context) error {
	s.stopTimers()
	if s.store == nil {
		return nil
	}
	return s.store.ClearTasks(ctx)
}

// Stop cancels every armed timer and clears the map. Used at process
// shutdown; the store is not touched.
func (s *Scheduler) Stop() {
	s.stopTimers()
	s.log.Info("reminder scheduler stopped")
}

func (s *Scheduler) stopTimers() {
	s.mu.Lock()
	for _, t := range s.timers {
		_ = t.Stop()
	}
	s.timers = map[int64]canceller{}
	s.gens = map[int64]uint64{}
	s.mu.Unlock()
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Apply updates runtime settings. A timezone change cancels all armed timers
// and re-evaluates every persisted task against the new zone.
func (s *Scheduler) Apply(ctx context.Context, cfg Config) {
	loc := loadLocation(cfg.Timezone, s.log)

	s.mu.Lock()
	changed := loc.String() != s.loc.String()
	s.loc = loc
	s.mu.Unlock()
	if !changed || s.store == nil {
		return
	}

	s.stopTimers()
	tasks, err := s.store.GetTasks(ctx)
	if err != nil {
		s.log.Warn("reloading reminders after timezone change failed", logx.Err(err))
		return
	}
	armed := 0
	for _, t := range tasks {
		if s.Schedule(t) {
			armed++
		}
	}
	s.log.Info("reminders rescheduled",
		logx.String("tz", loc.String()), logx.Int("armed", armed))
}

func (s *Scheduler) location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

func loadLocation(tz string, log logx.Logger) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("invalid timezone, falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}
