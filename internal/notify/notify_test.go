package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	logx "jarvis/pkg/logx"
)

type fakeChannel struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	label string
}

func (f *fakeChannel) name() string { return f.label }

func (f *fakeChannel) send(_ context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("boom")
	}
	f.sent = append(f.sent, title+"|"+message)
	return nil
}

func TestPushFansOutAndSwallowsFailures(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	bad := &fakeChannel{label: "bad", fail: true}
	good := &fakeChannel{label: "good"}
	s.channels = []channel{bad, good}

	if err := s.Push(context.Background(), "Reminder", "call mom (15:00)"); err != nil {
		t.Fatalf("Push must never return an error, got %v", err)
	}
	if len(good.sent) != 1 || !strings.Contains(good.sent[0], "call mom") {
		t.Fatalf("later channel must still deliver: %v", good.sent)
	}
}

func TestApplyDisablesChannels(t *testing.T) {
	t.Parallel()
	s := New(Config{Desktop: DesktopConfig{Enabled: true}}, logx.Nop())
	if len(s.channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(s.channels))
	}
	s.Apply(Config{})
	if len(s.channels) != 0 {
		t.Fatalf("channels = %d after disable, want 0", len(s.channels))
	}
}

func TestToastCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		goos     string
		wantName string
		wantOK   bool
		contains string
	}{
		{goos: "linux", wantName: "notify-send", wantOK: true, contains: "--expire-time=10000"},
		{goos: "darwin", wantName: "osascript", wantOK: true, contains: "display notification"},
		{goos: "windows", wantName: "powershell", wantOK: true, contains: "ShowBalloonTip"},
		{goos: "plan9", wantOK: false},
	}
	cfg := DesktopConfig{Enabled: true, Timeout: 10 * time.Second}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.goos, func(t *testing.T) {
			name, args, ok := toastCommand(tt.goos, cfg, "Reminder", "call mom")
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if name != tt.wantName {
				t.Fatalf("name = %q, want %q", name, tt.wantName)
			}
			joined := strings.Join(args, " ")
			if !strings.Contains(joined, tt.contains) {
				t.Fatalf("args %q should contain %q", joined, tt.contains)
			}
			if !strings.Contains(joined, "call mom") {
				t.Fatalf("args %q should carry the message", joined)
			}
		})
	}
}

func TestQuoting(t *testing.T) {
	t.Parallel()
	if got := appleScriptString(`say "hi"`); got != `"say \"hi\""` {
		t.Fatalf("appleScriptString = %s", got)
	}
	if got := powershellString("it's"); got != "'it''s'" {
		t.Fatalf("powershellString = %s", got)
	}
}
