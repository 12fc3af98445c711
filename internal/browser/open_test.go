package browser

import (
	"slices"
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	const u = "https://viewer.example.com/events"
	tests := []struct {
		name     string
		goos     string
		env      string
		wantArgs []string
	}{
		{"darwin", "darwin", "", []string{"open", u}},
		{"linux", "linux", "", []string{"xdg-open", u}},
		{"windows", "windows", "", []string{"rundll32", "url.dll,FileProtocolHandler", u}},
		{"browser env", "linux", "firefox", []string{"firefox", u}},
		{"browser env with args", "darwin", "chromium --new-window", []string{"chromium", "--new-window", u}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Command(tt.goos, tt.env, u)
			if err != nil {
				t.Fatalf("Command() error: %v", err)
			}
			if !slices.Equal(cmd.Args, tt.wantArgs) {
				t.Errorf("args = %q, want %q", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestCommandRejects(t *testing.T) {
	for _, u := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "http://"} {
		if _, err := Command("linux", "", u); err == nil {
			t.Errorf("Command(%q) = nil error, want refusal", u)
		}
	}
	_, err := Command("plan9", "", "http://localhost:4000")
	if err == nil || !strings.Contains(err.Error(), "unsupported OS") {
		t.Errorf("Command(plan9) err = %v, want unsupported OS", err)
	}
}
