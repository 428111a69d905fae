// Package cmd wires the command-line surface: natural-language search,
// question answering, index builds, and index status.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"localfind/internal/config"
)

var (
	flagConfig  string
	flagFolders []string
	flagData    string
	flagVerbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "localfind",
	Short: "Find and ask questions about your local documents",
	Long: `localfind searches your folders with plain-English queries like
"tax documents from march 2024" and answers questions from the
content of your files using a local model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if len(flagFolders) > 0 {
			loaded.Folders = flagFolders
		}
		if flagData != "" {
			loaded.DataDir = flagData
		}
		cfg = loaded
		log.Debug().Strs("folders", cfg.Folders).Str("data", cfg.DataDir).Msg("configuration loaded")
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.localfind/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&flagFolders, "folder", nil, "folder to search (repeatable, overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "index data directory (default ~/.localfind/index)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}
