package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"localfind/internal/vecstore"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index state",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vecstore.Open(cfg.DataDir)
		if err != nil {
			if errors.Is(err, vecstore.ErrInconsistent) {
				fmt.Println("Index is damaged. Run 'localfind index' to rebuild it.")
				return nil
			}
			return err
		}

		st := store.Status()
		if st.Entries == 0 {
			fmt.Println("No index yet. Run 'localfind index' to build one.")
			return nil
		}
		fmt.Printf("Chunks indexed:  %d\n", st.Entries)
		fmt.Printf("Vector size:     %d\n", st.Dimension)
		fmt.Printf("Last build:      %s\n", st.LastBuild.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Build id:        %s\n", st.BuildID)
		fmt.Printf("Data directory:  %s\n", store.Dir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
