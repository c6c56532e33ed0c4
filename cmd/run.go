package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"boe-rag/internal/helper"
	"boe-rag/internal/pipeline"
)

var (
	flagDate   string
	flagFrom   string
	flagTo     string
	flagDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest the summary of one publication date",
	Example: `  boe-rag run --date 2025-04-17
  boe-rag run --date 2025-04-17 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if flagDate != "" {
			d, err := helper.ParseDate(flagDate)
			if err != nil {
				return err
			}
			date = d
		}
		return ingest(cmd, []time.Time{date}, false)
	},
}

var backfillCmd = &cobra.Command{
	Use:     "backfill",
	Short:   "Ingest every date in a range, one run per date",
	Example: `  boe-rag backfill --from 2025-04-01 --to 2025-04-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := helper.ParseDate(flagFrom)
		if err != nil {
			return err
		}
		to, err := helper.ParseDate(flagTo)
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("--to %s is before --from %s", flagTo, flagFrom)
		}
		return ingest(cmd, helper.DateRange(from, to), true)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagDate, "date", "", "Publication date, YYYY-MM-DD (default today)")
	backfillCmd.Flags().StringVar(&flagFrom, "from", "", "First date, YYYY-MM-DD")
	backfillCmd.Flags().StringVar(&flagTo, "to", "", "Last date, YYYY-MM-DD")
	_ = backfillCmd.MarkFlagRequired("from")
	_ = backfillCmd.MarkFlagRequired("to")

	for _, c := range []*cobra.Command{runCmd, backfillCmd} {
		c.Flags().BoolVar(&flagDryRun, "dry-run", false, "Write local artifacts only: no embeddings, no database or vector stores")
		rootCmd.AddCommand(c)
	}
}

// ingest runs the pipeline for every date. In a backfill a failed date is
// logged and the next one proceeds.
func ingest(cmd *cobra.Command, dates []time.Time, keepGoing bool) error {
	ctx := cmd.Context()
	runID := helper.NewRunID()
	logger := log.With().Str("run_id", runID).Logger()
	log.Logger = logger

	stats := &pipeline.Stats{}
	observer := pipeline.Observers{pipeline.LogObserver{Logger: logger}, stats}

	p, closer, err := buildPipeline(ctx, cfg, observer, flagDryRun)
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing stores")
		}
	}()
	if err != nil {
		return err
	}

	failed := 0
	for _, date := range dates {
		start := time.Now()
		res, err := p.Run(ctx, date)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if !keepGoing {
				return err
			}
			failed++
			logger.Error().Err(err).Str("date", date.Format(time.DateOnly)).Msg("date failed")
			continue
		}
		logger.Info().
			Str("date", date.Format(time.DateOnly)).
			Int("records", len(res.Records)).
			Int("chunks", res.Chunks).
			Dur("elapsed", time.Since(start)).
			Msg("date ingested")
	}

	logger.Info().Object("stats", stats.Snapshot()).Int("dates", len(dates)).Int("failed_dates", failed).Msg("run finished")
	return nil
}
