package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marchallab/netview/pkg/cache"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
)

const testDocument = `{
  "graph": {
    "nodes": [
      {"id": "A", "samples": {"mutation": "QA=="}},
      {"id": "B", "samples": {"mutation": ""}},
      {"id": "C"},
      {"id": "D"}
    ],
    "links": [
      {"source": "A", "target": "B", "type": "pp"},
      {"source": "B", "target": "C", "type": "pd"},
      {"source": "C", "target": "D", "type": "met", "direction": "undirected"}
    ],
    "conditions": ["s1", "s2"],
    "genesOfInterest": ["mutation"]
  },
  "paths": {"expression": ["s1\ts1\t1.0\tA->B->C"]},
  "geneSets": {"set1": ["A", "B"]}
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestValidateForLoad(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"network file", Options{Network: "n.json"}, false},
		{"inline", Options{Document: []byte("{}")}, false},
		{"nothing", Options{}, true},
		{"inline with paths", Options{Document: []byte("{}"), Paths: "p.json"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForLoad() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForLayout(t *testing.T) {
	var opts Options
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if opts.Seed != DefaultSeed || opts.MaxTicks != DefaultMaxTicks || opts.Mode != "paths" {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := Options{Mode: "everything"}
	if err := bad.ValidateForLayout(); err == nil {
		t.Error("invalid mode should fail")
	}

	both := Options{Focus: "A", GeneSet: "set1"}
	if err := both.ValidateForLayout(); err == nil {
		t.Error("focus and gene set together should fail")
	}

	edge := Options{Focus: "A;"}
	if err := edge.ValidateForLayout(); !errors.IsInvalid(err) {
		t.Errorf("malformed edge focus error = %v, want INVALID_INPUT", err)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{Seed: 1, GeneSet: "set1"}
	b := Options{Seed: 1, Sample: "set1"}
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("gene set and sample highlights should key differently")
	}

	labelled := Options{Seed: 1}
	bare := Options{Seed: 1, NoLabels: true}
	if labelled.LayoutKeyOpts() == bare.LayoutKeyOpts() {
		t.Error("a layout without labels should not share a key with a labelled one")
	}
	k := cache.NewDefaultKeyer()
	if k.LayoutKey("doc", labelled.LayoutKeyOpts()) == k.LayoutKey("doc", bare.LayoutKeyOpts()) {
		t.Error("NoLabels should change the layout cache key")
	}
}

func TestLoadInlineAndFiles(t *testing.T) {
	ctx := context.Background()
	inline, inlineHash, err := Load(ctx, Options{Document: []byte(testDocument)})
	if err != nil {
		t.Fatalf("Load inline: %v", err)
	}
	if len(inline.Graph.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(inline.Graph.Nodes))
	}

	dir := t.TempDir()
	write := func(name string, v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	_, filesHash, err := Load(ctx, Options{
		Network:  write("network.json", inline.Graph),
		Paths:    write("paths.json", inline.Paths),
		GeneSets: write("genesets.json", inline.GeneSets),
	})
	if err != nil {
		t.Fatalf("Load files: %v", err)
	}
	if inlineHash != filesHash {
		t.Error("same content split over files should hash equally")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, _, err := Load(context.Background(), Options{Document: []byte(`{"graph": {"nodes": [{"id": "A"}], "links": [{"source": "A", "target": "Z"}]}}`)})
	if err == nil {
		t.Fatal("link to unknown node should fail")
	}
}

func TestComputeLayoutDeterministic(t *testing.T) {
	ctx := context.Background()
	doc, _, err := Load(ctx, Options{Document: []byte(testDocument)})
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(doc, Options{})
	if err != nil {
		t.Fatal(err)
	}

	l1, err := ComputeLayout(ctx, m, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	l2, _ := ComputeLayout(ctx, m, Options{Seed: 7})
	d1, _ := graph.MarshalLayout(l1)
	d2, _ := graph.MarshalLayout(l2)
	if string(d1) != string(d2) {
		t.Error("equal seeds should give equal layouts")
	}
	if l1.Ticks == 0 || len(l1.Nodes) != 4 || len(l1.Links) != 3 {
		t.Errorf("layout: ticks %d, nodes %d, links %d", l1.Ticks, len(l1.Nodes), len(l1.Links))
	}
}

func TestComputeLayoutHighlight(t *testing.T) {
	ctx := context.Background()
	doc, _, _ := Load(ctx, Options{Document: []byte(testDocument)})
	m, _ := Build(doc, Options{})

	l, err := ComputeLayout(ctx, m, Options{Focus: "A", MaxTicks: 5})
	if err != nil {
		t.Fatal(err)
	}
	if l.Focus != "A" || l.Mode != "paths" {
		t.Errorf("focus %q mode %q", l.Focus, l.Mode)
	}
	d, _ := l.NodeByID("D")
	if d.Opacity != 0.1 {
		t.Errorf("D off the path should be dimmed, opacity %v", d.Opacity)
	}

	if _, err := ComputeLayout(ctx, m, Options{Focus: "Z", MaxTicks: 5}); err == nil {
		t.Error("unknown focus should fail")
	}
	if _, err := ComputeLayout(ctx, m, Options{GeneSet: "nope", MaxTicks: 5}); err == nil {
		t.Error("unknown gene set should fail")
	}
}

func TestComputeLayoutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc, _, _ := Load(context.Background(), Options{Document: []byte(testDocument)})
	m, _ := Build(doc, Options{})
	if _, err := ComputeLayout(ctx, m, Options{}); err != context.Canceled {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestRenderTextFormats(t *testing.T) {
	ctx := context.Background()
	doc, _, _ := Load(ctx, Options{Document: []byte(testDocument)})
	m, _ := Build(doc, Options{})
	l, _ := ComputeLayout(ctx, m, Options{MaxTicks: 10})

	artifacts, err := Render(ctx, l, Options{Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := graph.UnmarshalLayout(artifacts[FormatJSON]); err != nil {
		t.Errorf("json artifact: %v", err)
	}
	if !strings.Contains(string(artifacts[FormatDOT]), `"A" -> "B"`) {
		t.Error("dot artifact missing link")
	}

	if _, err := Render(ctx, l, Options{Formats: []string{"pdf"}}); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestRunnerCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Document: []byte(testDocument), Formats: []string{FormatJSON}, MaxTicks: 20}
	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if string(first.Artifacts[FormatJSON]) != string(second.Artifacts[FormatJSON]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh should bypass the cache")
	}
}
