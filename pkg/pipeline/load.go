package pipeline

import (
	"context"
	"fmt"

	"github.com/marchallab/netview/pkg/cache"
	"github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/graph"
	"github.com/marchallab/netview/pkg/network"
	"github.com/marchallab/netview/pkg/paths"
)

// Load reads the input document named by opts and returns it with its
// content hash. The hash is taken over the canonical encoding, so a combined
// document and the same content split over three files hash equally.
func Load(ctx context.Context, opts Options) (graph.Document, string, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return graph.Document{}, "", err
	}
	if err := ctx.Err(); err != nil {
		return graph.Document{}, "", err
	}

	var (
		doc graph.Document
		err error
	)
	switch {
	case len(opts.Document) > 0:
		doc, err = graph.UnmarshalDocument(opts.Document)
	case opts.Paths != "" || opts.GeneSets != "":
		doc, err = graph.ReadDocumentFiles(opts.Network, opts.Paths, opts.GeneSets)
	default:
		doc, err = graph.ReadDocumentFile(opts.Network)
	}
	if err != nil {
		return graph.Document{}, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "load document")
	}

	data, err := graph.MarshalDocument(doc)
	if err != nil {
		return graph.Document{}, "", fmt.Errorf("hash document: %w", err)
	}
	return doc, cache.Hash(data), nil
}

// Build indexes the document's paths and builds the network model.
func Build(doc graph.Document, opts Options) (*network.Model, error) {
	idx, err := paths.Parse(doc.Paths)
	if err != nil {
		return nil, err
	}
	return network.Build(doc, idx, network.Options{BaseRadius: opts.BaseRadius})
}
