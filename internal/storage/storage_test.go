package storage

import (
	"context"
	"path/filepath"
	"testing"

	logx "jarvis/pkg/logx"
)

func openDrivers(t *testing.T) map[string]TaskStore {
	t.Helper()
	dir := t.TempDir()
	stores := map[string]TaskStore{}
	for _, driver := range []string{"sqlite", "file"} {
		st, err := Open(Config{Driver: driver, Path: filepath.Join(dir, driver, "jarvis.db")}, logx.Nop())
		if err != nil {
			t.Fatalf("Open(%s) error: %v", driver, err)
		}
		stores[driver] = st
	}
	return stores
}

func TestTaskCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for driver, st := range openDrivers(t) {
		t.Run(driver, func(t *testing.T) {
			defer st.Close()

			id1, err := st.AddTask(ctx, "call mom", "15:00")
			if err != nil {
				t.Fatalf("AddTask error: %v", err)
			}
			id2, err := st.AddTask(ctx, "standup", "09:30")
			if err != nil {
				t.Fatalf("AddTask error: %v", err)
			}
			if id1 == id2 {
				t.Fatalf("ids must be unique, got %d twice", id1)
			}

			tasks, err := st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks error: %v", err)
			}
			if len(tasks) != 2 {
				t.Fatalf("len(tasks) = %d, want 2", len(tasks))
			}
			// Ordered by time.
			if tasks[0].Time != "09:30" || tasks[1].Time != "15:00" {
				t.Fatalf("unexpected order: %+v", tasks)
			}
			if tasks[1].ID != id1 || tasks[1].Description != "call mom" {
				t.Fatalf("unexpected task: %+v", tasks[1])
			}

			if err := st.DeleteTask(ctx, id1); err != nil {
				t.Fatalf("DeleteTask error: %v", err)
			}
			// Double delete is a no-op.
			if err := st.DeleteTask(ctx, id1); err != nil {
				t.Fatalf("repeat DeleteTask error: %v", err)
			}

			tasks, err = st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks error: %v", err)
			}
			if len(tasks) != 1 || tasks[0].ID != id2 {
				t.Fatalf("unexpected tasks after delete: %+v", tasks)
			}

			if err := st.ClearTasks(ctx); err != nil {
				t.Fatalf("ClearTasks error: %v", err)
			}
			tasks, err = st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks error: %v", err)
			}
			if len(tasks) != 0 {
				t.Fatalf("tasks remain after clear: %+v", tasks)
			}
		})
	}
}

func TestIDsSurviveReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	for _, driver := range []string{"sqlite", "file"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			cfg := Config{Driver: driver, Path: filepath.Join(dir, driver, "jarvis.db")}

			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			id, err := st.AddTask(ctx, "water plants", "18:00")
			if err != nil {
				t.Fatalf("AddTask error: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}

			st, err = Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("reopen error: %v", err)
			}
			defer st.Close()

			tasks, err := st.GetTasks(ctx)
			if err != nil {
				t.Fatalf("GetTasks error: %v", err)
			}
			if len(tasks) != 1 || tasks[0].ID != id || tasks[0].Description != "water plants" {
				t.Fatalf("unexpected tasks after reopen: %+v", tasks)
			}

			// New inserts must not reuse the old id.
			id2, err := st.AddTask(ctx, "another", "19:00")
			if err != nil {
				t.Fatalf("AddTask error: %v", err)
			}
			if id2 == id {
				t.Fatalf("id reused after reopen: %d", id2)
			}
		})
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "none"}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if st != nil {
		t.Fatal("disabled storage should return a nil store")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
