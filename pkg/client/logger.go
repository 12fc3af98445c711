package client

import (
	"fmt"
	"log/slog"
	"strings"
)

// restyLogger forwards resty's printf-style logging to slog.
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "resty"))
}
