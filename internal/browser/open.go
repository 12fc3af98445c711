// Package browser opens the viewer web UI in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Open opens rawURL in $BROWSER when set, otherwise the platform default.
// Only http and https URLs are accepted.
func Open(rawURL string) error {
	cmd, err := Command(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	go cmd.Wait() //nolint:errcheck // reap the child
	return nil
}

// Command builds the launcher command without starting it.
func Command(goos, browserEnv, rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("browser: refusing to open %q", rawURL)
	}
	if fields := strings.Fields(browserEnv); len(fields) > 0 {
		return exec.Command(fields[0], append(fields[1:], rawURL)...), nil //nolint:gosec // user-chosen launcher
	}
	switch goos {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
