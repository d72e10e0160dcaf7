package storage

import (
	"context"
	"errors"
	"strings"

	logx "jarvis/pkg/logx"
)

// TaskStore is the persistence API consumed by the reminder scheduler and the
// command router.
type TaskStore interface {
	// AddTask inserts a new pending task and returns the store-assigned id.
	AddTask(ctx context.Context, description, hhmm string) (int64, error)
	// GetTasks returns all pending tasks.
	GetTasks(ctx context.Context) ([]Task, error)
	// DeleteTask removes a task by id. Removing an absent id is a no-op.
	DeleteTask(ctx context.Context, id int64) error
	// ClearTasks removes every task.
	ClearTasks(ctx context.Context) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (TaskStore, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "file":
		return openFile(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
