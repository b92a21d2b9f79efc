// Package comps provides comparable-transaction statistics from a Postgres
// data warehouse. The source is strictly optional: every failure mode (nil
// pool, timeout, query error, open breaker, empty result set) degrades to
// nil stats and the valuation pipeline carries on with its static tables.
package comps

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/db"
	"github.com/sells-group/valuation-api/internal/resilience"
	"github.com/sells-group/valuation-api/internal/valuation"
)

// statsQuery aggregates recent comparable sales for one category. Multiples
// in the warehouse are already local-market.
const statsQuery = `
	SELECT COUNT(*),
	       COALESCE(AVG(revenue_multiple), 0),
	       COALESCE(AVG(profit_multiple), 0)
	FROM comparable_sales
	WHERE category = $1
	  AND sold_at > now() - interval '2 years'`

// PGSource implements valuation.CompsSource against the comparable_sales
// table.
type PGSource struct {
	pool    db.Pool
	breaker *resilience.Breaker
}

// NewPGSource creates a source over the given pool. Returns nil if pool is
// nil, which callers treat as "no live source configured".
func NewPGSource(pool db.Pool) *PGSource {
	if pool == nil {
		return nil
	}
	return &PGSource{
		pool:    pool,
		breaker: resilience.NewBreaker(0, 0),
	}
}

// Stats returns aggregate multiples for the category, or nil when no
// comparable sales exist. The breaker keeps a dead warehouse from being
// re-probed on every wizard submission.
func (s *PGSource) Stats(ctx context.Context, c valuation.Category) (*valuation.CompsStats, error) {
	stats, err := resilience.Do(ctx, s.breaker, func(ctx context.Context) (*valuation.CompsStats, error) {
		return s.query(ctx, c)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			zap.L().Debug("comps: breaker open, skipping live source",
				zap.String("category", string(c)),
			)
			return nil, err
		}
		return nil, err
	}
	return stats, nil
}

func (s *PGSource) query(ctx context.Context, c valuation.Category) (*valuation.CompsStats, error) {
	var count int
	var revMultiple, pfMultiple float64
	err := s.pool.QueryRow(ctx, statsQuery, string(c)).Scan(&count, &revMultiple, &pfMultiple)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "comps: query stats for %s", c)
	}
	if count == 0 {
		return nil, nil
	}
	return &valuation.CompsStats{
		Count:           count,
		RevenueMultiple: revMultiple,
		ProfitMultiple:  pfMultiple,
	}, nil
}

// Close releases the underlying pool.
func (s *PGSource) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
