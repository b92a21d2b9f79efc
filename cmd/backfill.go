package main

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/valuation-api/internal/store"
)

var backfillFlags struct {
	category    string
	limit       int
	concurrency int
	dryRun      bool
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Recompute stored valuations with the current tables",
	Long: `Re-runs the pipeline over stored valuation inputs and overwrites their
results. Run this after revising the multiplier tables so old records match
what the calculator would produce today.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "backfill")
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.Store.ListValuations(ctx, store.ValuationFilter{
			Category: backfillFlags.category,
			Limit:    backfillFlags.limit,
		})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			zap.L().Info("no valuations to backfill")
			return nil
		}

		concurrency := backfillFlags.concurrency
		if concurrency == 0 {
			concurrency = cfg.Backfill.MaxConcurrent
		}

		zap.L().Info("backfilling valuations",
			zap.Int("records", len(records)),
			zap.Int("concurrency", concurrency),
			zap.Bool("dry_run", backfillFlags.dryRun),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		var updated, unchanged, failed atomic.Int64

		for _, rec := range records {
			g.Go(func() error {
				log := zap.L().With(zap.String("id", rec.ID))

				res := env.Calc.Calculate(gctx, rec.Input)
				if res == rec.Result {
					unchanged.Add(1)
					return nil
				}

				log.Info("valuation changed",
					zap.Int64("old_value", rec.Result.Value),
					zap.Int64("new_value", res.Value),
				)
				if backfillFlags.dryRun {
					updated.Add(1)
					return nil
				}

				if err := env.Store.UpdateValuationResult(gctx, rec.ID, res); err != nil {
					failed.Add(1)
					log.Error("update failed", zap.Error(err))
					return nil // don't abort the batch on individual failure
				}
				updated.Add(1)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "backfill")
		}

		zap.L().Info("backfill complete",
			zap.Int64("updated", updated.Load()),
			zap.Int64("unchanged", unchanged.Load()),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

func init() {
	backfillCmd.Flags().StringVar(&backfillFlags.category, "category", "", "only backfill this category")
	backfillCmd.Flags().IntVar(&backfillFlags.limit, "limit", 10000, "max records to process")
	backfillCmd.Flags().IntVar(&backfillFlags.concurrency, "concurrency", 0, "worker count (default from config)")
	backfillCmd.Flags().BoolVar(&backfillFlags.dryRun, "dry-run", false, "report changes without writing")
	rootCmd.AddCommand(backfillCmd)
}
