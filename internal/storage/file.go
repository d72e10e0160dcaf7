package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	logx "jarvis/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.tasks.snapshot.json (periodic snapshot)
//   - <prefix>.tasks.journal.jsonl (append-only journal)
//
// The journal is periodically compacted into the snapshot.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalFile  *os.File

	tasks  map[int64]Task
	nextID int64

	writes int
}

type taskRecord struct {
	Op          string `json:"op"` // "add", "del", "clear"
	ID          int64  `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Time        string `json:"time,omitempty"`
}

type taskSnapshot struct {
	NextID int64  `json:"next_id"`
	Tasks  []Task `json:"tasks"`
}

func openFile(cfg Config, log logx.Logger) (TaskStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".tasks.snapshot.json"
	journalPath := prefix + ".tasks.journal.jsonl"

	// Rebuild state from snapshot + journal.
	st := &fileStore{
		log:          log,
		snapshotPath: snapPath,
		tasks:        map[int64]Task{},
		nextID:       1,
	}
	_ = st.loadSnapshot(snapPath)
	_ = st.replayJournal(journalPath)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	st.journalFile = jf
	return st, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return nil
	}
	err := s.journalFile.Close()
	s.journalFile = nil
	return err
}

func (s *fileStore) AddTask(ctx context.Context, description, hhmm string) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return 0, errors.New("task journal closed")
	}

	id := s.nextID
	s.nextID++
	t := Task{ID: id, Description: description, Time: hhmm}
	if err := s.appendLocked(taskRecord{Op: "add", ID: id, Description: description, Time: hhmm}); err != nil {
		s.nextID--
		return 0, err
	}
	s.tasks[id] = t
	return id, nil
}

func (s *fileStore) GetTasks(ctx context.Context) ([]Task, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Time != tasks[j].Time {
			return tasks[i].Time < tasks[j].Time
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *fileStore) DeleteTask(ctx context.Context, id int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return errors.New("task journal closed")
	}
	if _, ok := s.tasks[id]; !ok {
		// Already gone; not an error.
		return nil
	}
	if err := s.appendLocked(taskRecord{Op: "del", ID: id}); err != nil {
		return err
	}
	delete(s.tasks, id)
	return nil
}

func (s *fileStore) ClearTasks(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return errors.New("task journal closed")
	}
	if err := s.appendLocked(taskRecord{Op: "clear"}); err != nil {
		return err
	}
	s.tasks = map[int64]Task{}
	return nil
}

func (s *fileStore) appendLocked(r taskRecord) error {
	enc := json.NewEncoder(s.journalFile)
	if err := enc.Encode(r); err != nil {
		return err
	}
	s.writes++
	if s.writes%500 == 0 {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("task journal compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) compactLocked() error {
	snap := taskSnapshot{NextID: s.nextID, Tasks: make([]Task, 0, len(s.tasks))}
	for _, t := range s.tasks {
		snap.Tasks = append(snap.Tasks, t)
	}
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })

	tmp := s.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}
	// Truncate journal.
	if err := s.journalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.journalFile.Seek(0, 2)
	return err
}

func (s *fileStore) loadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var snap taskSnapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return err
	}
	for _, t := range snap.Tasks {
		s.tasks[t.ID] = t
	}
	if snap.NextID > s.nextID {
		s.nextID = snap.NextID
	}
	return nil
}

func (s *fileStore) replayJournal(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r taskRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		switch r.Op {
		case "add":
			s.tasks[r.ID] = Task{ID: r.ID, Description: r.Description, Time: r.Time}
			if r.ID >= s.nextID {
				s.nextID = r.ID + 1
			}
		case "del":
			delete(s.tasks, r.ID)
		case "clear":
			s.tasks = map[int64]Task{}
		}
	}
	return sc.Err()
}
