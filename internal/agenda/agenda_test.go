package agenda

import (
	"context"
	"strings"
	"testing"

	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

type memStore struct {
	tasks []storage.Task
	err   error
}

func (m *memStore) AddTask(context.Context, string, string) (int64, error) { return 0, nil }
func (m *memStore) GetTasks(context.Context) ([]storage.Task, error)       { return m.tasks, m.err }
func (m *memStore) DeleteTask(context.Context, int64) error                { return nil }
func (m *memStore) ClearTasks(context.Context) error                       { return nil }
func (m *memStore) Close() error                                           { return nil }

type recordSink struct {
	titles   []string
	messages []string
}

func (r *recordSink) Push(_ context.Context, title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func TestDigestEmpty(t *testing.T) {
	t.Parallel()
	got := Digest(nil)
	if !strings.Contains(got, "No reminders") {
		t.Errorf("Digest(nil) = %q", got)
	}
}

func TestDigestSortsByTime(t *testing.T) {
	t.Parallel()
	got := Digest([]storage.Task{
		{ID: 1, Description: "standup", Time: "17:30"},
		{ID: 2, Description: "call mom", Time: "09:05"},
		{ID: 3, Description: "lunch", Time: "12:00"},
	})
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	for i, want := range []string{"09:05", "12:00", "17:30"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want time %s", i+1, lines[i+1], want)
		}
	}
}

func TestDeliverPushesDigest(t *testing.T) {
	t.Parallel()
	sink := &recordSink{}
	s := New(Config{Enabled: true, Time: "08:00"},
		&memStore{tasks: []storage.Task{{ID: 1, Description: "water plants", Time: "10:00"}}},
		sink, logx.Nop())

	s.deliver()

	if len(sink.messages) != 1 {
		t.Fatalf("pushes = %d, want 1", len(sink.messages))
	}
	if sink.titles[0] != "Today's agenda" {
		t.Errorf("title = %q", sink.titles[0])
	}
	if !strings.Contains(sink.messages[0], "water plants") {
		t.Errorf("message = %q", sink.messages[0])
	}
}

func TestStartRejectsBadTime(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, Time: "8am"}, &memStore{}, &recordSink{}, logx.Nop())
	if err := s.Start(); err == nil {
		t.Error("Start accepted invalid digest time")
	}
}

func TestStartDisabledIsNoop(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: false}, &memStore{}, &recordSink{}, logx.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop(context.Background())
}
