package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/artifact"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/pipeline"
)

// renderFlags holds the command-line flags of the render command that are
// not pipeline options.
type renderFlags struct {
	output     string // output file (single format) or base path
	formats    string // comma-separated formats
	fromLayout bool   // input is a layout.json file, not a network
	upload     bool   // write to the configured artifact destination
	outDir     string // local output directory, overrides the output's directory
	noCache    bool
}

// renderCommand creates the render command for producing network artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags renderFlags
		in    inputFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [network.json | layout.json]",
		Short: "Render a network to JSON, DOT, SVG or PNG",
		Long: `Render a network to JSON, DOT, SVG or PNG.

The render command settles the layout of a network (or reads a layout file
written by 'layout' when --from-layout is set) and renders it with Graphviz,
keeping every node at its simulated position.

Artifacts are written next to the input, to --out-dir, or uploaded to the
configured S3 bucket with --upload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if !cmd.Flags().Changed("labels") {
				opts.Labels = c.Config.Render.Labels
			}
			in.apply(&opts, args[0])
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), json, dot, png (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&flags.fromLayout, "from-layout", false, "read a layout file instead of a network")
	cmd.Flags().BoolVar(&flags.upload, "upload", false, "write to the configured artifact destination")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "output directory")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.Labels, "labels", true, "draw node labels")
	cmd.Flags().StringVar(&opts.Title, "title", "", "graph title")
	in.register(cmd)
	registerLayoutFlags(cmd, &opts)

	return cmd
}

// runRender lays out (or reads) the network, renders it and writes the
// artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags renderFlags) error {
	c.setCLIDefaults(&opts)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var (
		layout    graph.Layout
		nodes     int
		links     int
		layoutHit bool
	)
	if flags.fromLayout {
		layout, err = graph.ReadLayoutFile(opts.Network)
		if err != nil {
			return fmt.Errorf("read layout %s: %w", opts.Network, err)
		}
		nodes, links = len(layout.Nodes), len(layout.Links)
	} else {
		_, m, docHash, err := runner.Load(ctx, opts)
		if err != nil {
			return fmt.Errorf("load network %s: %w", opts.Network, err)
		}
		nodes, links = len(m.Nodes), len(m.Links)

		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Settling layout of %d nodes...", nodes))
		spinner.Start()
		layout, layoutHit, err = runner.LayoutWithCacheInfo(ctx, m, docHash, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
		spinner.Stop()
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	st := startStage(ctx, "render")
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	st.done("formats", opts.Formats, "cached", renderHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(flags.output, opts.Network)
	if flags.fromLayout && flags.output == "" {
		base = basePath("", base) // strip ".layout" from "x.layout.json"
	}
	dest, err := c.destination(ctx, flags, base)
	if err != nil {
		return err
	}
	for format := range artifacts {
		if sameFile(dest.Location(artifact.Name(filepath.Base(base), format)), opts.Network) {
			return fmt.Errorf("%s output would overwrite the input %s (use -o or --out-dir)", format, opts.Network)
		}
	}
	locations, err := artifact.WriteAll(ctx, dest, filepath.Base(base), artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d artifact(s)", len(locations))
	for _, loc := range locations {
		printFile(loc)
	}
	printStats(nodes, links, renderHit)
	if layoutHit {
		printDetail("layout from cache")
	}
	return nil
}

// destination picks where artifacts go: the configured destination with
// --upload, --out-dir, or the directory of base.
func (c *CLI) destination(ctx context.Context, flags renderFlags, base string) (artifact.Destination, error) {
	if flags.upload {
		dest, err := artifact.Open(ctx, c.Config.Artifacts)
		if err != nil {
			return nil, fmt.Errorf("open artifact destination: %w", err)
		}
		return dest, nil
	}
	if flags.outDir != "" {
		return artifact.NewDir(flags.outDir), nil
	}
	return artifact.NewDir(filepath.Dir(base)), nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
