// Package cli implements the netview command-line interface.
//
// This package provides commands for laying out interaction networks
// headlessly, rendering them, inspecting highlights, serving interactive
// viewer sessions over HTTP and exploring a network in the terminal. The CLI
// is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
//   - layout: Settle the force layout of a network and write it as JSON
//   - render: Render a network to JSON, DOT, SVG or PNG
//   - highlight: Print the info panel of a focused node or edge
//   - serve: Serve interactive viewer sessions over HTTP
//   - explore: Browse a network and its highlights in the terminal
//   - cache: Manage the layout and artifact cache
//   - config: Inspect and initialise the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/marchallab/netview/internal/config"
	"github.com/marchallab/netview/pkg/buildinfo"
	"github.com/marchallab/netview/pkg/cache"
	"github.com/marchallab/netview/pkg/observability"
	"github.com/marchallab/netview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "netview"

// annotationNoConfig marks commands that run without reading the config file.
const annotationNoConfig = "netview/no-config"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "netview lays out and explores biological interaction networks",
		Long: `netview lays out biological interaction networks with a force simulation,
highlights the paths, components and neighbourhoods of genes and proteins,
and renders or serves the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoConfig] == "" {
				cfg, err := config.Load(c.configPath)
				if err != nil {
					return err
				}
				c.Config = cfg
			}
			observability.SetPipelineHooks(logHooks{c.Logger})
			observability.SetCacheHooks(logHooks{c.Logger})
			observability.SetSessionHooks(logHooks{c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.highlightCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, c.Config.Cache)
	if err != nil {
		c.Logger.Warn("Cache unavailable, continuing without", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Input Flags
// =============================================================================

// inputFlags are the document flags shared by every command that loads a
// network.
type inputFlags struct {
	paths    string
	geneSets string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.paths, "paths", "", "path records file, when not part of the network document")
	cmd.Flags().StringVar(&f.geneSets, "genesets", "", "gene sets file, when not part of the network document")
}

// apply sets the input fields of opts.
func (f *inputFlags) apply(opts *pipeline.Options, network string) {
	opts.Network = network
	opts.Paths = f.paths
	opts.GeneSets = f.geneSets
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies configured defaults on top of pipeline defaults.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.Seed == 0 {
		opts.Seed = c.Config.Layout.Seed
	}
	if opts.MaxTicks == 0 {
		opts.MaxTicks = c.Config.Layout.MaxTicks
	}
	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = c.Config.Layout.Width, c.Config.Layout.Height
	}
	if opts.Mode == "" {
		opts.Mode = c.Config.Layout.Mode
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Config.Render.Formats
	}
	opts.Logger = c.Logger
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

// basePath derives the output base from the output flag and the input path.
// A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
