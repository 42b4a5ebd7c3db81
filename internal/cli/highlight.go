package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/pipeline"
)

// highlightReport is the machine-readable output of the highlight command.
type highlightReport struct {
	Mode   string   `json:"mode"`
	Target string   `json:"target"`
	Title  string   `json:"title"`
	Lines  []string `json:"lines,omitempty"`
	Nodes  []string `json:"nodes"`
}

// highlightCommand creates the highlight command for inspecting what a focus,
// gene set or sample highlight selects.
func (c *CLI) highlightCommand() *cobra.Command {
	var (
		in      inputFlags
		asJSON  bool
		opts    pipeline.Options
		geneSet string
		sample  string
	)

	cmd := &cobra.Command{
		Use:   "highlight [network.json] [node | A;B]",
		Short: "Print the info panel of a focused node or edge",
		Long: `Print the info panel of a focused node or edge.

With a target, the node or edge (written "A;B") is focused in the given
--mode and the info panel text is printed along with the genes the highlight
includes. With --geneset-highlight or --sample instead, the members of that
gene set or sample are listed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.apply(&opts, args[0])
			if len(args) == 2 {
				opts.Focus = args[1]
			}
			opts.GeneSet, opts.Sample = geneSet, sample
			return c.runHighlight(cmd.Context(), opts, asJSON, os.Stdout)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "highlight mode: paths, component, neighbors")
	cmd.Flags().StringVar(&geneSet, "geneset-highlight", "", "gene set to highlight")
	cmd.Flags().StringVar(&sample, "sample", "", "sample to highlight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	withModeCompletion(cmd)

	return cmd
}

// runHighlight loads the network and prints the highlight selected by opts.
func (c *CLI) runHighlight(ctx context.Context, opts pipeline.Options, asJSON bool, w io.Writer) error {
	c.setCLIDefaults(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	if opts.Focus == "" && opts.GeneSet == "" && opts.Sample == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a target, --geneset-highlight or --sample is required")
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, m, _, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load network %s: %w", opts.Network, err)
	}

	report, err := computeHighlight(m, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(w, StyleTitle.Render(report.Title))
	for _, line := range report.Lines {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d of %d genes: ", len(report.Nodes), len(m.Nodes)))+
		StyleValue.Render(strings.Join(report.Nodes, ", ")))
	return nil
}

// computeHighlight evaluates the highlight requested by opts against m.
func computeHighlight(m *network.Model, opts pipeline.Options) (highlightReport, error) {
	mode, err := highlight.ParseMode(opts.Mode)
	if err != nil {
		return highlightReport{}, err
	}

	var (
		r      highlight.Result
		target string
	)
	switch {
	case opts.GeneSet != "":
		target = "geneset:" + opts.GeneSet
		r, err = highlight.GeneSet(m, opts.GeneSet)
	case opts.Sample != "":
		target = "sample:" + opts.Sample
		r, err = highlight.Sample(m, opts.Sample)
	default:
		t := highlight.ParseTarget(opts.Focus)
		target = t.String()
		if err = checkTarget(m, t); err == nil {
			r = highlight.Compute(m, highlight.State{Mode: mode, Focus: t})
		}
	}
	if err != nil {
		return highlightReport{}, err
	}

	report := highlightReport{
		Mode:   string(mode),
		Target: target,
		Title:  r.Info.Title,
		Lines:  r.Info.Lines,
		Nodes:  []string{},
	}
	for i, n := range m.Nodes {
		if r.NodeIncluded(i) {
			report.Nodes = append(report.Nodes, n.ID)
		}
	}
	return report, nil
}

// checkTarget reports unknown targets, which Compute would silently map to
// the baseline.
func checkTarget(m *network.Model, t highlight.Target) error {
	switch t.Kind {
	case highlight.Node:
		if _, ok := m.NodeByID(t.ID); !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", t.ID)
		}
	case highlight.Edge:
		if _, ok := m.LinkByKey(t.ID); !ok {
			return errors.New(errors.ErrCodeEdgeNotFound, "edge %q not found", t.ID)
		}
	}
	return nil
}
