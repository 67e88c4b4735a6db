package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookwatch/internal/analyze"
	"github.com/pdiddy/bookwatch/internal/booklist"
	"github.com/pdiddy/bookwatch/internal/history"
	"github.com/pdiddy/bookwatch/internal/keywords"
	"github.com/pdiddy/bookwatch/internal/llm"
	"github.com/pdiddy/bookwatch/internal/notify"
	"github.com/pdiddy/bookwatch/internal/notion"
	"github.com/pdiddy/bookwatch/internal/pipeline"
	"github.com/pdiddy/bookwatch/internal/weread"
	"github.com/pdiddy/bookwatch/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every pending book and record the verdicts",
	Long: `Check runs the full pipeline over the book list: keyword generation,
platform search, and match analysis per book. Books come from the Notion
database by default, or from a local YAML file via --books.

Verdicts are written back to Notion (when it is the source), recorded in
the run-history database, optionally saved as a YAML report, and pushed
to the configured webhooks. A book whose check fails is reported in the
summary; it does not abort the run or the exit status.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("books", "", "YAML book list file (default: the Notion database)")
	checkCmd.Flags().String("report", "", "write a YAML run report to this path")
	checkCmd.Flags().Bool("no-notify", false, "skip webhook notifications")
	checkCmd.Flags().Bool("no-history", false, "skip recording the run in the history database")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()

	booksFile, _ := cmd.Flags().GetString("books")
	reportPath, _ := cmd.Flags().GetString("report")
	noNotify, _ := cmd.Flags().GetBool("no-notify")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	var queries []types.BookQuery
	var store *notion.Store
	var handles []notion.BookHandle

	if booksFile != "" {
		var err error
		queries, err = booklist.ReadBookFile(booksFile)
		if err != nil {
			return err
		}
	} else {
		if cfg.Notion.APIToken == "" || cfg.Notion.DatabaseID == "" {
			return fmt.Errorf("no book source: set notion.database_id and the notion-api-token secret, or pass --books")
		}
		store = notion.NewStore(cfg.Notion)
		var err error
		handles, err = store.ListPending(ctx)
		if err != nil {
			return fmt.Errorf("listing pending books: %w", err)
		}
		for _, h := range handles {
			queries = append(queries, h.Query)
		}
	}

	if len(queries) == 0 {
		fmt.Fprintln(os.Stdout, "no pending books to check")
		return nil
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no LLM API key: set the llm-api-key secret or llm.api_key")
	}

	backend := llm.NewClient(cfg.LLM)
	p := pipeline.New(
		keywords.NewGenerator(backend, cfg.LLM),
		weread.NewClient(cfg.Search),
		analyze.NewAnalyzer(backend, cfg.LLM),
		cfg.Pipeline,
	)

	summary := p.Run(ctx, queries, os.Stdout)

	if store != nil {
		writeBack(ctx, store, handles, summary)
	}

	if !noHistory {
		if err := recordHistory(cfg.History, summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if reportPath != "" {
		if err := booklist.WriteReport(reportPath, summary); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "report written to %s\n", reportPath)
	}

	if !noNotify {
		if err := notify.New(cfg.Notify).Send(ctx, summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	return nil
}

// writeBack updates the Notion pages with their verdicts. Results come
// back in input order, so handles and results line up by index. Update
// failures are warnings; the verdicts are still in the summary and the
// history database.
func writeBack(ctx context.Context, store *notion.Store, handles []notion.BookHandle, summary types.RunSummary) {
	for i, r := range summary.Results {
		if i >= len(handles) {
			break
		}
		if err := store.UpdateVerdict(ctx, handles[i], r.Outcome, r.Verdict); err != nil {
			fmt.Fprintf(os.Stderr, "warning: updating %q: %v\n", r.Query.Title, err)
		}
	}
}

func recordHistory(cfg types.HistoryConfig, summary types.RunSummary) error {
	store, err := history.NewStore(cfg)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer store.Close()

	if _, err := store.RecordRun(summary); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}
