package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookwatch/internal/keywords"
	"github.com/pdiddy/bookwatch/internal/llm"
	"github.com/pdiddy/bookwatch/pkg/types"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords <title>",
	Short: "Generate search keywords for one book",
	Long: `Keywords runs only the keyword generation stage for a single title and
prints the ranked candidates. Useful for tuning the prompt or inspecting
what a check would search for.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().String("author", "", "author of the book")

	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no LLM API key: set the llm-api-key secret or llm.api_key")
	}

	author, _ := cmd.Flags().GetString("author")
	q := types.BookQuery{Title: args[0], Author: author}

	g := keywords.NewGenerator(llm.NewClient(cfg.LLM), cfg.LLM)
	ks := g.Generate(cmd.Context(), q)

	if ks.Error != "" {
		fmt.Fprintf(os.Stderr, "warning: fell back to degenerate keywords: %s\n", ks.Error)
	}
	if ks.CorrectedTitle != "" && ks.CorrectedTitle != q.Title {
		fmt.Fprintf(os.Stdout, "corrected title: %s\n", ks.CorrectedTitle)
	}
	for i, kw := range ks.Keywords {
		fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, kw)
	}
	if ks.Reasoning != "" {
		fmt.Fprintf(os.Stdout, "reasoning: %s\n", ks.Reasoning)
	}
	return nil
}
