package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"localfind/internal/embedding"
	"localfind/internal/ingest"
	"localfind/internal/vecstore"
)

var indexCmd = &cobra.Command{
	Use:   "index [folders...]",
	Short: "Build or rebuild the document index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			folders := make([]string, 0, len(args))
			for _, a := range args {
				abs, err := filepath.Abs(a)
				if err != nil {
					return err
				}
				folders = append(folders, abs)
			}
			cfg.Folders = folders
		}

		// An inconsistent store is fine here, the rebuild replaces it.
		store, err := vecstore.Open(cfg.DataDir)
		if store == nil {
			return err
		}

		embedder, err := embedding.New(cfg.Embed)
		if err != nil {
			return err
		}

		pipeline := ingest.New(cfg, embedder, store)
		fmt.Printf("Indexing %d folder(s)...\n", len(cfg.Folders))
		stats, err := pipeline.Rebuild(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d of %d files (%d chunks) in %s.\n",
			stats.FilesIndexed, stats.FilesSeen, stats.Chunks, stats.Duration.Round(time.Millisecond))
		if len(stats.Failures) > 0 {
			fmt.Printf("%d file(s) could not be read:\n", len(stats.Failures))
			for path, reason := range stats.Failures {
				fmt.Printf("  %s: %s\n", path, reason)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
