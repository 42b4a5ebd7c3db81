package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/pipeline"
)

// layoutCommand creates the layout command for settling a network's force layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		in      inputFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [network.json]",
		Short: "Settle the force layout of a network",
		Long: `Settle the force layout of a network.

The layout command loads a network document, runs the force simulation until
it cools down (or --max-ticks ticks have run) and writes the resulting frame as
a layout.json file. The frame carries node positions, label positions and the
opacities of an optional highlight (--focus, --geneset-highlight or --sample).

The layout file can be rendered to DOT, SVG or PNG with 'render --from-layout'.

Results are cached, keyed on the document content and layout options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.apply(&opts, args[0])
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	in.register(cmd)
	registerLayoutFlags(cmd, &opts)

	return cmd
}

// registerLayoutFlags adds the simulation and highlight flags shared by the
// layout, render and highlight commands.
func registerLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for initial positions (default from config)")
	cmd.Flags().IntVar(&opts.MaxTicks, "max-ticks", 0, "maximum simulation ticks (default from config)")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default: derived from node count)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default: derived from node count)")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "skip label placement")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "highlight mode: paths, component, neighbors")
	cmd.Flags().StringVar(&opts.Focus, "focus", "", "node id or edge key (A;B) to highlight")
	cmd.Flags().StringVar(&opts.GeneSet, "geneset-highlight", "", "gene set to highlight")
	cmd.Flags().StringVar(&opts.Sample, "sample", "", "sample whose links and genes to highlight")
	withModeCompletion(cmd)
}

// runLayout loads the network, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	c.setCLIDefaults(&opts)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, m, docHash, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load network %s: %w", opts.Network, err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Settling layout of %d nodes...", len(m.Nodes)))
	spinner.Start()

	st := startStage(ctx, "layout")
	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, m, docHash, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	st.done("ticks", layout.Ticks, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(opts.Network, filepath.Ext(opts.Network))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete after %d ticks", layout.Ticks)
	printFile(outputPath)
	printStats(len(m.Nodes), len(m.Links), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render --from-layout "+outputPath)

	return nil
}
