// internal/cli/watch.go
package ragmill

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/ragmill/internal/watch"
)

// watchCmd watches a directory and indexes every supported document dropped
// into it. It runs until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and index new documents",
	Long:  `The 'watch' command monitors the configured directory for new files. Each supported document is indexed into the vector store once it has finished being written.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := newStore(cfg)
		if err := store.EnsureCollection(ctx, cfg.EmbeddingDim, cfg.Metric); err != nil {
			return fmt.Errorf("prepare collection %q: %w", cfg.Collection, err)
		}

		ingester := newIngester(cfg)
		watcher, err := watch.New(cfg.WatchDir, cfg.ReadyTimeout(), func(ctx context.Context, path string) error {
			n, err := ingester.IngestFile(ctx, path)
			if err != nil {
				color.Red("%s: %v", path, err)
				return err
			}
			color.Green("%s: indexed %d segments", path, n)
			return nil
		})
		if err != nil {
			return err
		}

		color.Cyan("Watching %s for new documents. Press Ctrl+C to stop.", cfg.WatchDir)
		return watcher.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
