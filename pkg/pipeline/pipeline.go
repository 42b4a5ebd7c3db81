// Package pipeline runs the headless load → build → layout → render chain.
//
// The CLI and the HTTP server share this package so that a layout computed
// by one is byte-identical to a layout computed by the other and can be
// served from the same cache.
//
// # Stages
//
//  1. Load: read the input document (network, paths and gene sets)
//  2. Build: index paths and build the network model
//  3. Layout: run the force simulation until it settles and apply the
//     requested highlight
//  4. Render: produce JSON, DOT, SVG and PNG artifacts
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Network: "network.json",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/marchallab/netview/pkg/cache"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultMaxTicks bounds a headless layout run. A simulation started at
	// alpha 1 settles after about 300 ticks.
	DefaultMaxTicks = 1000
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Input: either a combined document file, separate files, or raw bytes.
	Network  string `json:"network,omitempty"`
	Paths    string `json:"paths,omitempty"`
	GeneSets string `json:"gene_sets,omitempty"`
	Document []byte `json:"document,omitempty"`

	// Layout options
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	MaxTicks   int     `json:"max_ticks,omitempty"`
	BaseRadius float64 `json:"base_radius,omitempty"`
	NoLabels   bool    `json:"no_labels,omitempty"`

	// Highlight applied to the final frame
	Mode    string `json:"mode,omitempty"`
	Focus   string `json:"focus,omitempty"`
	GeneSet string `json:"gene_set,omitempty"`
	Sample  string `json:"sample,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Document     graph.Document
	DocumentHash string
	Model        *network.Model
	Layout       graph.Layout
	Artifacts    map[string][]byte
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	PathCount  int
	Ticks      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (want json, dot, svg or png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLoad checks that an input was given.
func (o *Options) ValidateForLoad() error {
	if o.Network == "" && len(o.Document) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "network file or document is required")
	}
	if len(o.Document) > 0 && (o.Paths != "" || o.GeneSets != "") {
		return errors.New(errors.ErrCodeInvalidInput, "paths and gene sets files cannot be combined with an inline document")
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults fills in layout defaults. Width and height stay zero so
// that the model's own canvas size applies.
func (o *Options) SetLayoutDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks <= 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.BaseRadius <= 0 {
		o.BaseRadius = network.DefaultBaseRadius
	}
	if o.Mode == "" {
		o.Mode = string(highlight.DefaultMode)
	}
	o.setLogger()
}

// ValidateForLayout sets layout defaults and checks the highlight options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if _, err := highlight.ParseMode(o.Mode); err != nil {
		return err
	}
	n := 0
	for _, s := range []string{o.Focus, o.GeneSet, o.Sample} {
		if s != "" {
			n++
		}
	}
	if n > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "focus, gene set and sample highlights are exclusive")
	}
	if o.Focus != "" {
		return errors.ValidateTarget(o.Focus)
	}
	return nil
}

// SetRenderDefaults fills in render defaults.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender sets render defaults and checks the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates the options of a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	focus := o.Focus
	switch {
	case o.GeneSet != "":
		focus = "geneset:" + o.GeneSet
	case o.Sample != "":
		focus = "sample:" + o.Sample
	}
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Seed:       o.Seed,
		Ticks:      o.MaxTicks,
		BaseRadius: o.BaseRadius,
		Mode:       o.Mode,
		Focus:      focus,
		NoLabels:   o.NoLabels,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Engine: "neato",
		Labels: o.Labels,
	}
}
