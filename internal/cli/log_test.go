package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("Listed 3 projects")

	out := buf.String()
	if !strings.Contains(out, "Listed 3 projects (") || !strings.Contains(out, "ms)") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := newLogHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()

	hooks.OnTablesLoad(ctx, "embedded", 30, time.Millisecond, nil)
	hooks.OnResolve(ctx, "enable passwordReset", 1, false, time.Millisecond, nil)
	hooks.OnSave(ctx, "file", "5b0c9c6e", 120, time.Millisecond, nil)
	hooks.OnResponse(ctx, "GET", "/healthz", 503, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"feature tables loaded",
		"mutation=\"enable passwordReset\"",
		"project saved",
		"request failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	hooks := newLogHooks(newLogger(&buf, log.InfoLevel))
	hooks.OnLoad(context.Background(), "memory", "id", time.Millisecond, nil)
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %s", buf.String())
	}
}
