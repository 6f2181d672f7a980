package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikibot/internal/core/domain"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent ingestion runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to show")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runStore == nil {
		return errors.New("run history not configured")
	}

	runs, err := runStore.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if runsJSON {
		return outputRunsJSON(cmd, runs)
	}
	return outputRunsTable(cmd, runs)
}

func outputRunsJSON(cmd *cobra.Command, runs []domain.IngestReport) error {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal runs: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRunsTable(cmd *cobra.Command, runs []domain.IngestReport) error {
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSPACE\tTOTAL\tPROCESSED\tSKIPPED\tERRORED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.SpaceKey,
			r.Total, r.Processed, r.Skipped, r.Errored,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
		)
	}
	return w.Flush()
}
