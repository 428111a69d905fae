package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"localfind/internal/queryparse"
	"localfind/internal/search"
)

var flagMax int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search files by name, date, and type",
	Example: `  localfind search "tax documents from march 2024"
  localfind search "pdfs edited last week"
  localfind search "budget spreadsheet" --max 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMax > 0 {
			cfg.MaxResults = flagMax
		}
		engine := search.NewEngine(cfg)

		hits, parsed, err := engine.Search(cmd.Context(), strings.Join(args, " "), time.Now())
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No matching files.")
			return nil
		}

		if parsed.Window != nil {
			fmt.Printf("Matching files %s:\n\n", describeWindow(parsed))
		}
		for i, h := range hits {
			fmt.Printf("%2d. %-40s  %s  %s\n",
				i+1,
				filepath.Base(h.Path),
				h.ModTime.Format("2006-01-02"),
				h.Path)
		}
		return nil
	},
}

func describeWindow(parsed queryparse.Parsed) string {
	w := parsed.Window
	switch {
	case !w.Start.IsZero() && !w.End.IsZero():
		return fmt.Sprintf("between %s and %s", w.Start.Format("2006-01-02"), w.End.AddDate(0, 0, -1).Format("2006-01-02"))
	case !w.Start.IsZero():
		return "since " + w.Start.Format("2006-01-02")
	default:
		return "before " + w.End.Format("2006-01-02")
	}
}

func init() {
	searchCmd.Flags().IntVar(&flagMax, "max", 0, "maximum results to show")
	rootCmd.AddCommand(searchCmd)
}
