package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookwatch/internal/weread"
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search the WeRead catalog directly",
	Long: `Search runs the raw platform search for the given keywords, trying each
in order until one returns results, and prints the normalized candidates.
Useful for debugging why a book was or was not matched.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more search keywords")
	}

	cfg := loadConfig()
	client := weread.NewClient(cfg.Search)

	out := client.Search(cmd.Context(), args)
	if out.Failed {
		return fmt.Errorf("search failed: %s", out.Error)
	}
	if !out.HasResults() {
		fmt.Fprintf(os.Stdout, "%s\n", out.Error)
		return nil
	}

	fmt.Fprintf(os.Stdout, "keyword %q matched %d of %d results\n",
		out.Keyword, len(out.Candidates), out.TotalCount)
	for i, c := range out.Candidates {
		line := fmt.Sprintf("%d. %s", i+1, c.Title)
		if c.Author != "" {
			line += " / " + c.Author
		}
		if c.Publisher != "" {
			line += " (" + c.Publisher + ")"
		}
		fmt.Fprintf(os.Stdout, "%s [%s]\n", line, c.State.Describe())
	}
	if len(out.AttemptedKeywords) > 1 {
		fmt.Fprintf(os.Stdout, "attempted: %s\n", strings.Join(out.AttemptedKeywords, ", "))
	}
	return nil
}
