package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts and artifacts",
		Long: `Clear all cached layouts and artifacts.

Only the file backend can be cleared from here. Redis and MongoDB entries
expire on their own.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := c.fileCache()
			if err != nil {
				return err
			}

			count, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCachePath(os.Stdout)
		},
	}
}

func (c *CLI) printCachePath(w io.Writer) error {
	fc, err := c.fileCache()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, fc.Dir())
	return nil
}

// fileCache opens the configured file cache. Other backends are rejected.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	switch c.Config.Cache.Backend {
	case "", cache.BackendFile:
	default:
		return nil, fmt.Errorf("cache backend %q is not a local directory", c.Config.Cache.Backend)
	}
	fc, err := cache.NewFileCache(c.Config.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	return fc, nil
}
