package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"trackalign/internal/media"
	"trackalign/internal/media/ffprobe"
	"trackalign/internal/segmentcache"
	"trackalign/internal/workspace"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain black segment caches",
	}
	cacheCmd.AddCommand(newCacheShowCommand(ctx))
	cacheCmd.AddCommand(newCacheSimplifyCommand(ctx))
	return cacheCmd
}

func newCacheShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "List the cached ranges of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openSegmentCache(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", cache.Path())

			var (
				rows  [][]string
				total int
			)
			for _, cfg := range cache.Configs() {
				for _, entry := range cache.Entries(cfg) {
					rows = append(rows, []string{cfg.String(), entry.Range.String(), strconv.Itoa(len(entry.Segments))})
					total += len(entry.Segments)
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No cached ranges")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				numeric(columns("Detector", "Range", "Segments"), "Segments"),
				rows,
				"", "Total", strconv.Itoa(total),
			))
			return nil
		},
	}
}

func newCacheSimplifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify FILE",
		Short: "Merge the cached ranges of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openSegmentCache(args[0])
			if err != nil {
				return err
			}
			before := countEntries(cache)
			cache.Simplify()
			if err := cache.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Simplified %s: %d ranges -> %d\n", cache.Path(), before, countEntries(cache))
			return nil
		},
	}
}

// openSegmentCache opens the cache belonging to path. The cache key only
// depends on file identity, so the file is not probed.
func (c *commandContext) openSegmentCache(path string) (*segmentcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat media: %w", err)
	}
	file := media.NewInputFile(abs, info, ffprobe.Result{})
	return segmentcache.Open(workspace.New(cfg).SegmentCachePath(file), logger), nil
}

func countEntries(cache *segmentcache.Cache) int {
	total := 0
	for _, cfg := range cache.Configs() {
		total += len(cache.Entries(cfg))
	}
	return total
}
