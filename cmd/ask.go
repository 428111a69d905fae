package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"localfind/internal/embedding"
	"localfind/internal/llm"
	"localfind/internal/rag"
	"localfind/internal/vecstore"
)

var flagTopK int

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from your indexed documents",
	Example: `  localfind ask "what did the Q3 budget allocate for travel?"
  localfind ask "when does my lease end?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := vecstore.Open(cfg.DataDir)
		if err != nil {
			if errors.Is(err, vecstore.ErrInconsistent) {
				return fmt.Errorf("index is damaged, run 'localfind index' to rebuild it")
			}
			return err
		}

		embedder, err := embedding.New(cfg.Embed)
		if err != nil {
			return err
		}
		model, err := llm.New(cfg.Chat)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		assembler := rag.New(embedder, store, model, cfg.RAG)
		answer, err := assembler.Answer(cmd.Context(), question, flagTopK)
		switch {
		case errors.Is(err, rag.ErrInsufficient):
			fmt.Println("Nothing in your indexed documents covers that. Try 'localfind index' if your files changed recently.")
			return nil
		case errors.Is(err, embedding.ErrUnavailable):
			// Without embeddings there is no retrieval at all.
			fmt.Println("The embedding model is unreachable, so question answering is unavailable. Check that your model endpoint is running.")
			return nil
		case errors.Is(err, llm.ErrUnavailable):
			// No chat model: fall back to showing the grounding itself.
			citations, rerr := assembler.Retrieve(cmd.Context(), question, flagTopK)
			if rerr != nil {
				return err
			}
			fmt.Println("The chat model is unreachable; here is what your documents say:")
			printCitations(citations)
			return nil
		case err != nil:
			return err
		}

		fmt.Println(answer.Text)
		fmt.Println("\nSources:")
		printSources(answer.Citations)
		return nil
	},
}

func printSources(citations []rag.Citation) {
	seen := make(map[string]bool)
	for _, c := range citations {
		key := fmt.Sprintf("[%d] %s", c.Ordinal, c.SourcePath)
		if !seen[key] {
			seen[key] = true
			fmt.Println("  " + key)
		}
	}
}

func printCitations(citations []rag.Citation) {
	for _, c := range citations {
		fmt.Printf("\n[%d] %s\n%s\n", c.Ordinal, c.SourcePath, c.Snippet)
	}
}

func init() {
	askCmd.Flags().IntVar(&flagTopK, "top-k", 0, "chunks retrieved per question (default from config)")
	rootCmd.AddCommand(askCmd)
}
