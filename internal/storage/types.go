package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the task store.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file":   dependency-free file backend (jsonl + snapshot)
//
// If Driver is "none", storage is disabled and reminders do not survive
// restarts.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Task is a pending reminder row.
//
// Time is a zero-padded 24-hour "HH:MM" wall-clock time targeting "today"
// relative to when the task is scheduled; there is no date component.
type Task struct {
	ID          int64
	Description string
	Time        string
}
