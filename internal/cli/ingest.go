// internal/cli/ingest.go
package ragmill

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/ragmill/internal/extract"
)

// ingestCmd indexes one or more documents (or directories of documents) into
// the vector store.
var ingestCmd = &cobra.Command{
	Use:   "ingest [path ...]",
	Short: "Index documents into the vector store",
	Long:  `The 'ingest' command splits each document into segments, embeds them, and persists the segments to the vector store. Directories are walked and every supported file is indexed.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := context.Background()

		store := newStore(cfg)
		if err := store.EnsureCollection(ctx, cfg.EmbeddingDim, cfg.Metric); err != nil {
			return fmt.Errorf("prepare collection %q: %w", cfg.Collection, err)
		}

		ingester := newIngester(cfg)
		for _, arg := range args {
			files, err := collectFiles(arg)
			if err != nil {
				return err
			}
			for _, file := range files {
				n, err := ingester.IngestFile(ctx, file)
				if err != nil {
					color.Red("%s: %v", file, err)
					continue
				}
				color.Green("%s: indexed %d segments", file, n)
			}
		}
		return nil
	},
}

// collectFiles resolves an argument to the list of supported files it names.
// A file argument is returned as-is even when its extension is unsupported so
// the caller can report it.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !extract.Supported(p) {
			color.Yellow("%s: skipped (unsupported format)", p)
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
