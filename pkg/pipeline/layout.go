package pipeline

import (
	"context"

	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/view"
)

// settleChunk is how many ticks run between cancellation checks.
const settleChunk = 50

// ComputeLayout runs the force layout of m until it settles or MaxTicks
// ticks have run, applies the requested highlight and returns the final
// frame.
func ComputeLayout(ctx context.Context, m *network.Model, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	mode, _ := highlight.ParseMode(opts.Mode)

	v := view.New(m, view.Options{
		Width:    opts.Width,
		Height:   opts.Height,
		Seed:     opts.Seed,
		NoLabels: opts.NoLabels,
		Mode:     mode,
	})
	defer v.Close()

	ticks := 0
	for ticks < opts.MaxTicks && !v.Settled() {
		if err := ctx.Err(); err != nil {
			return graph.Layout{}, err
		}
		n := v.Settle(min(settleChunk, opts.MaxTicks-ticks))
		if n == 0 {
			break
		}
		ticks += n
	}

	if err := applyHighlight(v, opts); err != nil {
		return graph.Layout{}, err
	}
	return v.Frame(), nil
}

func applyHighlight(v *view.Viewer, opts Options) error {
	switch {
	case opts.GeneSet != "":
		return v.HighlightGeneSet(opts.GeneSet)
	case opts.Sample != "":
		return v.HighlightSample(opts.Sample)
	case opts.Focus != "":
		_, err := v.Select(highlight.ParseTarget(opts.Focus))
		return err
	}
	return nil
}
