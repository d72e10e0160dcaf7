package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Screenshot captures the full screen into a timestamped PNG and returns its
// path.
func (s *Service) Screenshot(ctx context.Context) (string, error) {
	dir := s.config().ScreenshotDir
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve screenshot dir: %w", err)
		}
		dir = filepath.Join(cache, "jarvis", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	path := filepath.Join(dir, time.Now().Format("screenshot-20060102-150405.png"))
	cmd, args, ok := screenshotCommand(s.goos, path)
	if !ok {
		return "", fmt.Errorf("screenshots are not supported on %s", s.goos)
	}
	if err := s.runCmd(ctx, cmd, args...); err != nil {
		return "", fmt.Errorf("capture failed: %w", err)
	}
	return path, nil
}

func screenshotCommand(goos, path string) (string, []string, bool) {
	switch goos {
	case "linux":
		return "gnome-screenshot", []string{"-f", path}, true
	case "darwin":
		return "screencapture", []string{"-x", path}, true
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; $b = [System.Windows.Forms.SystemInformation]::VirtualScreen; $bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; $g = [System.Drawing.Graphics]::FromImage($bmp); $g.CopyFromScreen($b.Left, $b.Top, 0, 0, $bmp.Size); $bmp.Save('%s')`, path)
		return "powershell", []string{"-NoProfile", "-Command", script}, true
	default:
		return "", nil, false
	}
}
