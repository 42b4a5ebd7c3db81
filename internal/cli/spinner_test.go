package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Settling layout...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop()

	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop, want false")
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("idle").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that never started")
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name   string
		newCtx func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.newCtx()
			s := newSpinnerWithContext(ctx, "Rendering...")
			s.Start()
			if tt.name == "cancel" {
				cancel()
			} else {
				defer cancel()
			}
			<-s.stopped

			if !s.Cancelled() {
				t.Error("Cancelled() = false after the context ended")
			}
		})
	}
}

func TestSpinnerDrawsOnTerminalOnly(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Settling layout...")
	s.w = &buf

	s.enabled = false
	s.draw("⠋", time.Second)
	if buf.Len() != 0 {
		t.Fatalf("disabled spinner wrote %q", buf.String())
	}

	s.enabled = true
	s.draw("⠋", 1500*time.Millisecond)
	if out := buf.String(); !strings.Contains(out, "Settling layout...") || !strings.Contains(out, "1.5s") {
		t.Errorf("draw wrote %q, want the message and elapsed time", out)
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	buf := captureStdout(t)

	s := newSpinner("Rendering...")
	s.Start()
	s.StopWithSuccess("Rendered")
	s = newSpinner("Rendering...")
	s.Start()
	s.StopWithError("Render failed")

	out := buf.String()
	if !strings.Contains(out, "Rendered") || !strings.Contains(out, "Render failed") {
		t.Errorf("output = %q", out)
	}
}
