package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// desktopChannel shells out to the platform's notification utility, the same
// way the assistant executes its other OS actions.
type desktopChannel struct {
	cfg  DesktopConfig
	goos string
}

func newDesktopChannel(cfg DesktopConfig) *desktopChannel {
	return &desktopChannel{cfg: cfg, goos: runtime.GOOS}
}

func (d *desktopChannel) name() string { return "desktop" }

func (d *desktopChannel) send(ctx context.Context, title, message string) error {
	name, args, ok := toastCommand(d.goos, d.cfg, title, message)
	if !ok {
		return fmt.Errorf("no toast utility for %s", d.goos)
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

// toastCommand builds the platform toast invocation. Returns ok=false on
// platforms without a known utility.
func toastCommand(goos string, cfg DesktopConfig, title, message string) (string, []string, bool) {
	switch goos {
	case "linux":
		args := []string{"--app-name=jarvis"}
		if cfg.Timeout > 0 {
			args = append(args, "--expire-time="+strconv.FormatInt(cfg.Timeout.Milliseconds(), 10))
		}
		args = append(args, title, message)
		return "notify-send", args, true
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(message), appleScriptString(title))
		if cfg.Sound {
			script += ` sound name "default"`
		}
		return "osascript", []string{"-e", script}, true
	case "windows":
		script := fmt.Sprintf(
			`[System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms') | Out-Null; `+
				`$n = New-Object System.Windows.Forms.NotifyIcon; `+
				`$n.Icon = [System.Drawing.SystemIcons]::Information; `+
				`$n.Visible = $true; `+
				`$n.ShowBalloonTip(%d, %s, %s, 'Info')`,
			toastMillis(cfg.Timeout), powershellString(title), powershellString(message))
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, true
	default:
		return "", nil, false
	}
}

func toastMillis(d time.Duration) int64 {
	if d <= 0 {
		return 10000
	}
	return d.Milliseconds()
}

// appleScriptString quotes s for embedding in an osascript -e expression.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// powershellString quotes s as a single-quoted PowerShell literal.
func powershellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
