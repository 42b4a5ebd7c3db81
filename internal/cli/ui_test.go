package cli

import (
	"bytes"
	"strings"
	"testing"
)

// captureStdout redirects status output to a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		nodes, links int
		cached       bool
		want         []string
		absent       []string
	}{
		{12, 30, true, []string{"12 nodes", "30 links", "cached"}, []string{"fresh"}},
		{4, 0, false, []string{"4 nodes", "fresh"}, []string{"links"}},
	}
	for _, tt := range tests {
		buf := captureStdout(t)
		printStats(tt.nodes, tt.links, tt.cached)
		out := buf.String()
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("printStats(%d, %d, %v) = %q, missing %q", tt.nodes, tt.links, tt.cached, out, w)
			}
		}
		for _, a := range tt.absent {
			if strings.Contains(out, a) {
				t.Errorf("printStats(%d, %d, %v) = %q, unexpected %q", tt.nodes, tt.links, tt.cached, out, a)
			}
		}
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("Rendered %d artifact(s)", 2)
	printFile("out/net.svg")
	printNextStep("Render it", "netview render --from-layout net.layout.json")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"Rendered 2 artifact(s)", "out/net.svg", "--from-layout"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}
