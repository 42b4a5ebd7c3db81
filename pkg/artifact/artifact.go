// Package artifact writes rendered artifacts to their destination.
//
// A [Destination] stores named blobs. [Dir] writes to a local directory and
// [S3] uploads to an S3-compatible bucket; both are selected from a
// [Config] with [Open].
package artifact

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/marchallab/netview/pkg/errors"
)

// Destination stores rendered artifacts by name.
type Destination interface {
	// Write stores data under name, replacing any previous artifact.
	Write(ctx context.Context, name string, data []byte) error

	// Location describes where name is stored, e.g. a path or s3:// URL.
	Location(name string) string
}

// contentTypes maps artifact formats to MIME types.
var contentTypes = map[string]string{
	"json": "application/json",
	"dot":  "text/vnd.graphviz",
	"svg":  "image/svg+xml",
	"png":  "image/png",
}

// ContentType returns the MIME type of a format, or
// application/octet-stream.
func ContentType(format string) string {
	if t, ok := contentTypes[format]; ok {
		return t
	}
	return "application/octet-stream"
}

// Name returns the artifact name "base.format".
func Name(base, format string) string { return base + "." + format }

// WriteAll writes every artifact of a run concurrently, named base.format,
// and returns their locations in format order.
func WriteAll(ctx context.Context, dest Destination, base string, artifacts map[string][]byte) ([]string, error) {
	formats := slices.Sorted(maps.Keys(artifacts))
	locations := make([]string, len(formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		name := Name(base, format)
		if err := errors.ValidatePath(name); err != nil {
			return nil, err
		}
		locations[i] = dest.Location(name)
		g.Go(func() error {
			if err := dest.Write(ctx, name, artifacts[format]); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}

// Config selects a destination.
type Config struct {
	// Dir is the output directory when no bucket is set.
	Dir string `toml:"dir"`

	// Bucket enables S3 uploads.
	Bucket   string `toml:"bucket"`
	Prefix   string `toml:"prefix"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// Open returns an S3 destination when a bucket is configured and a
// directory destination otherwise.
func Open(ctx context.Context, cfg Config) (Destination, error) {
	if cfg.Bucket != "" {
		d, err := NewS3(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return NewDir(dir), nil
}
