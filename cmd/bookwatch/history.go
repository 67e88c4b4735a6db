package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookwatch/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check runs",
	Long: `History lists the most recent runs from the local history database, and
with --run the per-book verdicts of a single run.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
	historyCmd.Flags().Int64("run", 0, "show the per-book checks of this run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer store.Close()

	runID, _ := cmd.Flags().GetInt64("run")
	if runID > 0 {
		return printChecks(store, runID)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIMESTAMP\tTOTAL\tAVAILABLE\tUNAVAILABLE\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.Timestamp.Local().Format(time.DateTime),
			r.Total, r.Available, r.Unavailable, r.Failed)
	}
	return w.Flush()
}

func printChecks(store *history.Store, runID int64) error {
	checks, err := store.Checks(runID)
	if err != nil {
		return err
	}
	if len(checks) == 0 {
		fmt.Fprintf(os.Stdout, "run %d has no checks\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tKEYWORD\tAVAILABLE\tCONFIDENCE\tNOTE")
	for _, c := range checks {
		note := c.Verdict.Reasoning
		if c.Verdict.Error != "" {
			note = "error: " + c.Verdict.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%.2f\t%s\n",
			c.Query.Title, c.Outcome.Keyword, c.Verdict.Available, c.Verdict.Confidence, note)
	}
	return w.Flush()
}
