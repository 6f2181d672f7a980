package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driving"
	"github.com/custodia-labs/wikibot/internal/logger"
	"github.com/custodia-labs/wikibot/internal/timeutil"
)

var (
	ingestAll       bool
	ingestIDs       []string
	ingestExclude   []string
	ingestLimit     int
	ingestAfterDate string
	ingestRecent    bool
	ingestSpace     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest wiki pages into the vector index",
	Long: `Fetches Confluence pages, normalises and chunks their content, and
reconciles the chunks against the vector index.

Either --all (ingest a whole space) or --ids (an explicit page set)
must be given. Filters narrow the run further:

  --after-date  only pages modified on or after the given date
  --recent      only pages modified in the last 24 hours
  --exclude     page ids to always skip
  --limit       stop after this many pages (default 5000)`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAll, "all", false, "ingest every page in the space")
	ingestCmd.Flags().StringSliceVar(&ingestIDs, "ids", nil, "ingest only these page ids")
	ingestCmd.Flags().StringSliceVar(&ingestExclude, "exclude", nil, "page ids to skip")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", domain.DefaultIngestLimit, "maximum pages to process")
	ingestCmd.Flags().StringVar(&ingestAfterDate, "after-date", "", "only pages modified on or after this date (e.g. 2024-06-01)")
	ingestCmd.Flags().BoolVar(&ingestRecent, "recent", false, "only pages modified in the last 24 hours")
	ingestCmd.Flags().StringVar(&ingestSpace, "space", "", "space key (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestor == nil {
		return errors.New("ingestion not configured: set Confluence and database credentials")
	}

	opts, err := buildIngestOptions()
	if err != nil {
		return err
	}

	if len(opts.PageIDs) > 0 {
		cmd.Printf("Ingesting %d pages...\n", len(opts.PageIDs))
	} else {
		cmd.Println("Ingesting space...")
	}

	report, err := ingestWithProgress(cmd.Context(), cmd, opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Done: %d total, %d processed, %d skipped, %d errored\n",
		report.Total, report.Processed, report.Skipped, report.Errored)
	for _, f := range report.Failures {
		cmd.Printf("  failed %s (%s): %s\n", f.PageID, f.Title, f.Reason)
	}

	// Partial failure is still a completed run; the summary above is
	// the signal, not the exit code.
	return nil
}

// buildIngestOptions translates flags into ingestion options.
func buildIngestOptions() (domain.IngestOptions, error) {
	var opts domain.IngestOptions

	if ingestAll == (len(ingestIDs) > 0) {
		return opts, errors.New("exactly one of --all or --ids is required")
	}

	opts.PageIDs = ingestIDs
	opts.ExcludeIDs = ingestExclude
	opts.Limit = ingestLimit
	opts.SpaceKey = ingestSpace

	if ingestAfterDate != "" {
		t, err := timeutil.Parse(ingestAfterDate)
		if err != nil {
			return opts, fmt.Errorf("parse --after-date: %w", err)
		}
		opts.After = &t

		if ingestRecent {
			logger.Warn("--recent ignored: --after-date takes precedence")
		}
		return opts, nil
	}

	if ingestRecent {
		after := time.Now().UTC().Add(-24 * time.Hour)
		opts.After = &after
	}

	return opts, nil
}

// ingestWithProgress runs the ingestion while displaying progress.
func ingestWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	type result struct {
		report *domain.IngestReport
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := ingestor.Ingest(ctx, opts)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			if res.report != nil && res.report.Processed > 0 {
				cmd.Printf("\r")
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; a status error never interrupts the run.
			status, err := ingestor.Status(ctx)
			if err == nil && status != nil && progressCount(status) > lastCount {
				lastCount = progressCount(status)
				cmd.Printf("\rProcessing... %d pages (%d skipped, %d errored)",
					status.Processed, status.Skipped, status.Errored)
			}
		}
	}
}

func progressCount(s *driving.IngestStatus) int {
	return s.Processed + s.Skipped + s.Errored
}
