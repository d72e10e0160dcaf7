package actions

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	logx "jarvis/pkg/logx"
)

type recordedCmd struct {
	name string
	args []string
}

func newTestService(cfg Config) (*Service, *[]recordedCmd) {
	s := New(cfg, logx.Nop())
	var calls []recordedCmd
	s.runCmd = func(_ context.Context, name string, args ...string) error {
		calls = append(calls, recordedCmd{name: name, args: args})
		return nil
	}
	return s, &calls
}

func TestOpenAppCommand(t *testing.T) {
	t.Parallel()
	cases := []struct {
		goos     string
		app      string
		wantCmd  string
		wantArgs []string
		ok       bool
	}{
		{goos: "linux", app: "firefox", wantCmd: "firefox", ok: true},
		{goos: "darwin", app: "Safari", wantCmd: "open", wantArgs: []string{"-a", "Safari"}, ok: true},
		{goos: "windows", app: "notepad", wantCmd: "cmd", wantArgs: []string{"/c", "start", "", "notepad"}, ok: true},
		{goos: "plan9", app: "rio", ok: false},
	}
	for _, tc := range cases {
		cmd, args, ok := openAppCommand(tc.goos, tc.app)
		if ok != tc.ok {
			t.Fatalf("%s: ok = %v, want %v", tc.goos, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if cmd != tc.wantCmd {
			t.Errorf("%s: cmd = %q, want %q", tc.goos, cmd, tc.wantCmd)
		}
		if fmt.Sprint(args) != fmt.Sprint(tc.wantArgs) {
			t.Errorf("%s: args = %v, want %v", tc.goos, args, tc.wantArgs)
		}
	}
}

func TestOpenURLAddsScheme(t *testing.T) {
	t.Parallel()
	s, calls := newTestService(Config{})
	s.goos = "linux"

	reply, err := s.OpenURL(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("OpenURL: %v", err)
	}
	if !strings.Contains(reply, "https://example.com") {
		t.Errorf("reply = %q, want scheme prepended", reply)
	}
	if len(*calls) != 1 || (*calls)[0].name != "xdg-open" {
		t.Fatalf("calls = %v, want one xdg-open", *calls)
	}
	if got := (*calls)[0].args[0]; got != "https://example.com" {
		t.Errorf("url arg = %q", got)
	}
}

func TestOpenRejectsEmpty(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(Config{})
	if _, err := s.OpenApp(context.Background(), "  "); err == nil {
		t.Error("OpenApp accepted blank name")
	}
	if _, err := s.OpenURL(context.Background(), ""); err == nil {
		t.Error("OpenURL accepted blank url")
	}
}

func TestQuickAction(t *testing.T) {
	t.Parallel()
	s, calls := newTestService(Config{Quick: map[string]string{"lock": "loginctl lock-session"}})
	s.goos = "linux"

	if _, err := s.Quick(context.Background(), "lock"); err != nil {
		t.Fatalf("Quick: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(*calls))
	}
	got := (*calls)[0]
	if got.name != "sh" || got.args[0] != "-c" || got.args[1] != "loginctl lock-session" {
		t.Errorf("command = %v %v", got.name, got.args)
	}

	if _, err := s.Quick(context.Background(), "missing"); err == nil {
		t.Error("Quick accepted unknown macro")
	}
}

func TestScreenshotCommand(t *testing.T) {
	t.Parallel()
	for _, goos := range []string{"linux", "darwin", "windows"} {
		cmd, args, ok := screenshotCommand(goos, "/tmp/shot.png")
		if !ok {
			t.Fatalf("%s: not supported", goos)
		}
		if cmd == "" || len(args) == 0 {
			t.Errorf("%s: empty command", goos)
		}
		if !strings.Contains(strings.Join(args, " "), "/tmp/shot.png") {
			t.Errorf("%s: path missing from args %v", goos, args)
		}
	}
	if _, _, ok := screenshotCommand("plan9", "/tmp/shot.png"); ok {
		t.Error("plan9 reported as supported")
	}
}

func TestSystemInfo(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	s.startedAt = time.Now().Add(-90 * time.Second)

	out := s.SystemInfo()
	for _, want := range []string{"Host:", "OS:", "CPUs:", "uptime"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()
	if got := formatBytes(512); got != "512 B" {
		t.Errorf("formatBytes(512) = %q", got)
	}
	if got := formatBytes(2 * 1024 * 1024); got != "2.0 MiB" {
		t.Errorf("formatBytes(2MiB) = %q", got)
	}
	if got := formatUptime(26*time.Hour + 5*time.Minute); got != "1d 2h 5m" {
		t.Errorf("formatUptime = %q", got)
	}
	if got := formatUptime(42 * time.Second); got != "42s" {
		t.Errorf("formatUptime = %q", got)
	}
}
