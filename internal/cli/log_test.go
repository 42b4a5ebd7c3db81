package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/marchallab/netview/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("loaded") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("loaded") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("loaded") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.DebugLevel))

	s := startStage(ctx, "layout")
	time.Sleep(5 * time.Millisecond)
	s.done("ticks", 301)

	out := buf.String()
	for _, want := range []string{"layout done", "ticks=301", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("stage output %q missing %q", out, want)
		}
	}
}

func TestStageQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.InfoLevel))
	startStage(ctx, "render").done()
	if buf.Len() != 0 {
		t.Errorf("stage logged at info level: %q", buf.String())
	}
}

var (
	_ observability.PipelineHooks = logHooks{}
	_ observability.CacheHooks    = logHooks{}
	_ observability.SessionHooks  = logHooks{}
)

func TestLogHooks(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	h := logHooks{newLogger(&buf, log.DebugLevel)}
	h.OnLoadComplete(ctx, "net.json", 4, 3, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "bad.json", 0, 0, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "layout")
	h.OnInteraction(ctx, "s1", "focus", nil)

	out := buf.String()
	for _, want := range []string{"Loaded network", "Load failed", "boom", "Cache hit", "Interaction"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{newLogger(&buf, log.InfoLevel)}
	h.OnLayoutComplete(context.Background(), 300, time.Second, nil)
	h.OnSessionOpen(context.Background(), "s1", 4)

	if buf.Len() != 0 {
		t.Errorf("hooks should log at debug level only, got %q", buf.String())
	}
}
