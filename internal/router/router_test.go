package router

import (
	"context"
	"strings"
	"testing"

	"jarvis/internal/actions"
	"jarvis/internal/reminder"
	"jarvis/internal/storage"
	logx "jarvis/pkg/logx"
)

type fakeProvider struct {
	response string
	err      error
	lastUser string
}

func (f *fakeProvider) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	return f.response, f.err
}
func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

type memStore struct {
	nextID int64
	tasks  []storage.Task
}

func (m *memStore) AddTask(_ context.Context, description, hhmm string) (int64, error) {
	m.nextID++
	m.tasks = append(m.tasks, storage.Task{ID: m.nextID, Description: description, Time: hhmm})
	return m.nextID, nil
}

func (m *memStore) GetTasks(context.Context) ([]storage.Task, error) {
	out := make([]storage.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *memStore) DeleteTask(_ context.Context, id int64) error {
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) ClearTasks(context.Context) error {
	m.tasks = nil
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestRouter(p *fakeProvider, store storage.TaskStore) (*Router, *reminder.Scheduler) {
	sched := reminder.New(reminder.Config{}, store, nil, logx.Nop())
	acts := actions.New(actions.Config{}, logx.Nop())
	return New(p, sched, acts, logx.Nop()), sched
}

func TestParseAction(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare", raw: `{"action":"chat","reply":"hi"}`, want: ActionChat},
		{name: "fenced", raw: "```json\n{\"action\":\"reminder_list\"}\n```", want: ActionReminderList},
		{name: "prose wrapped", raw: `Sure! {"action":"system_info"} Hope that helps.`, want: ActionSystemInfo},
		{name: "uppercase", raw: `{"action":"SPEED_TEST"}`, want: ActionSpeedTest},
		{name: "no json", raw: "I cannot help with that.", wantErr: true},
		{name: "missing action", raw: `{"reply":"hi"}`, wantErr: true},
		{name: "broken json", raw: `{"action": "chat`, wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			act, err := ParseAction(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseAction(%q) succeeded with %+v", tc.raw, act)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q): %v", tc.raw, err)
			}
			if act.Action != tc.want {
				t.Errorf("action = %q, want %q", act.Action, tc.want)
			}
		})
	}
}

func TestParseActionFields(t *testing.T) {
	t.Parallel()
	act, err := ParseAction(`{"action":"reminder_add","description":"call mom","time":"15:00"}`)
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if act.Description != "call mom" || act.Time != "15:00" {
		t.Errorf("fields = %+v", act)
	}
}

func TestHandleReminderLifecycle(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	p := &fakeProvider{response: `{"action":"reminder_add","description":"standup","time":"23:59"}`}
	r, _ := newTestRouter(p, store)
	ctx := context.Background()

	reply, err := r.Handle(ctx, "remind me about standup just before midnight")
	if err != nil {
		t.Fatalf("Handle add: %v", err)
	}
	if !strings.Contains(reply, "#1") || !strings.Contains(reply, "23:59") {
		t.Errorf("add reply = %q", reply)
	}

	p.response = `{"action":"reminder_list"}`
	reply, err = r.Handle(ctx, "what do I have today")
	if err != nil {
		t.Fatalf("Handle list: %v", err)
	}
	if !strings.Contains(reply, "standup") {
		t.Errorf("list reply = %q", reply)
	}

	p.response = `{"action":"reminder_delete","id":1}`
	if _, err := r.Handle(ctx, "drop reminder 1"); err != nil {
		t.Fatalf("Handle delete: %v", err)
	}
	if len(store.tasks) != 0 {
		t.Errorf("store still holds %d tasks", len(store.tasks))
	}
}

func TestHandleChatPassthrough(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{response: `{"action":"chat","reply":"The capital of France is Paris."}`}
	r, _ := newTestRouter(p, &memStore{})

	reply, err := r.Handle(context.Background(), "capital of france?")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != "The capital of France is Paris." {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleUnparseableFallsBackToText(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{response: "Sorry, I can only help with desktop tasks."}
	r, _ := newTestRouter(p, &memStore{})

	reply, err := r.Handle(context.Background(), "write me a poem")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply != "Sorry, I can only help with desktop tasks." {
		t.Errorf("reply = %q", reply)
	}
}

func TestDispatchDeleteNeedsID(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(&fakeProvider{}, &memStore{})
	if _, err := r.Dispatch(context.Background(), Action{Action: ActionReminderDelete}); err == nil {
		t.Error("Dispatch accepted delete without id")
	}
}

func TestDispatchAddRejectsBadTime(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(&fakeProvider{}, &memStore{})
	for _, bad := range []string{"", "9:00", "25:00", "3pm"} {
		act := Action{Action: ActionReminderAdd, Description: "x", Time: bad}
		if _, err := r.Dispatch(context.Background(), act); err == nil {
			t.Errorf("Dispatch accepted time %q", bad)
		}
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(&fakeProvider{}, &memStore{})
	if _, err := r.Dispatch(context.Background(), Action{Action: "reboot_world"}); err == nil {
		t.Error("Dispatch accepted unknown action")
	}
}

func TestHandleEmptyInput(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{response: `{"action":"chat","reply":"hi"}`}
	r, _ := newTestRouter(p, &memStore{})
	reply, err := r.Handle(context.Background(), "   ")
	if err != nil || reply != "" {
		t.Errorf("Handle(blank) = %q, %v", reply, err)
	}
	if p.lastUser != "" {
		t.Error("blank input still reached the provider")
	}
}
