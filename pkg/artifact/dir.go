package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir writes artifacts as files in a local directory.
type Dir struct {
	root string
}

// NewDir returns a destination rooted at dir. The directory is created on
// first write.
func NewDir(dir string) *Dir { return &Dir{root: dir} }

// Write implements Destination.
func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := d.Location(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0644)
}

// Location implements Destination.
func (d *Dir) Location(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

var _ Destination = (*Dir)(nil)
