// Package actions executes the assistant's OS-level actions: opening
// applications and websites, reporting system stats, running a network speed
// test, capturing screenshots, and user-defined quick-action macros.
//
// Everything here shells out to ordinary OS utilities; results come back as
// short user-facing text for the REPL to render.
package actions

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	logx "jarvis/pkg/logx"
)

type Config struct {
	// ScreenshotDir is where captures land. Empty means os.UserCacheDir().
	ScreenshotDir string
	// Quick maps a macro name to the shell command it runs.
	Quick map[string]string
}

type Service struct {
	mu  sync.Mutex
	cfg Config

	log       logx.Logger
	goos      string
	startedAt time.Time

	// runCmd is swapped in tests.
	runCmd func(ctx context.Context, name string, args ...string) error
}

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:       cfg,
		log:       log,
		goos:      runtime.GOOS,
		startedAt: time.Now(),
		runCmd: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Apply swaps in a new config on reload.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Service) config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// OpenApp launches an application by name.
func (s *Service) OpenApp(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("application name required")
	}
	cmd, args, ok := openAppCommand(s.goos, name)
	if !ok {
		return "", fmt.Errorf("opening applications is not supported on %s", s.goos)
	}
	if err := s.runCmd(ctx, cmd, args...); err != nil {
		return "", fmt.Errorf("could not open %s: %w", name, err)
	}
	s.log.Info("application opened", logx.String("app", name))
	return "Opening " + name + ".", nil
}

// OpenURL opens a website in the default browser. A bare domain gets an
// https scheme prepended.
func (s *Service) OpenURL(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("url required")
	}
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}
	cmd, args, ok := openURLCommand(s.goos, url)
	if !ok {
		return "", fmt.Errorf("opening urls is not supported on %s", s.goos)
	}
	if err := s.runCmd(ctx, cmd, args...); err != nil {
		return "", fmt.Errorf("could not open %s: %w", url, err)
	}
	s.log.Info("url opened", logx.String("url", url))
	return "Opening " + url + ".", nil
}

// Quick runs a named macro from config via the shell.
func (s *Service) Quick(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	cfg := s.config()
	cmdline, ok := cfg.Quick[name]
	if !ok {
		known := make([]string, 0, len(cfg.Quick))
		for k := range cfg.Quick {
			known = append(known, k)
		}
		return "", fmt.Errorf("unknown quick action %q (configured: %s)", name, strings.Join(known, ", "))
	}

	shell, flag := systemShell(s.goos)
	if err := s.runCmd(ctx, shell, flag, cmdline); err != nil {
		return "", fmt.Errorf("quick action %q failed: %w", name, err)
	}
	s.log.Info("quick action executed", logx.String("name", name))
	return "Ran " + name + ".", nil
}

func openAppCommand(goos, name string) (string, []string, bool) {
	switch goos {
	case "linux":
		// Rely on PATH; desktop files would need a lookup table.
		return name, nil, true
	case "darwin":
		return "open", []string{"-a", name}, true
	case "windows":
		return "cmd", []string{"/c", "start", "", name}, true
	default:
		return "", nil, false
	}
}

func openURLCommand(goos, url string) (string, []string, bool) {
	switch goos {
	case "linux":
		return "xdg-open", []string{url}, true
	case "darwin":
		return "open", []string{url}, true
	case "windows":
		return "cmd", []string{"/c", "start", "", url}, true
	default:
		return "", nil, false
	}
}

func systemShell(goos string) (string, string) {
	if goos == "windows" {
		return "cmd", "/c"
	}
	return "sh", "-c"
}
