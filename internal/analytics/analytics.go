// Package analytics fans calculation events out to interested consumers.
// The calculator emits one event per computed valuation; sinks here log it,
// persist it, or both.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/store"
	"github.com/sells-group/valuation-api/internal/valuation"
)

// NopSink discards events.
type NopSink struct{}

func (NopSink) Calculated(valuation.Input, valuation.Result) {}

// LogSink writes one structured log line per calculation.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.L()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Calculated(in valuation.Input, res valuation.Result) {
	s.log.Info("valuation calculated",
		zap.String("category", string(in.Category)),
		zap.Int64("monthly_revenue", in.MonthlyRevenue),
		zap.Int64("monthly_profit", in.MonthlyProfit),
		zap.Int64("audience_size", in.AudienceSize),
		zap.Int64("value", res.Value),
		zap.Int("percentile", res.Percentile),
		zap.String("method", string(res.Method)),
		zap.String("confidence", string(res.Confidence)),
	)
}

// StoreSink persists each calculation as a valuation record. Writes run
// against a bounded-timeout context so a slow database cannot stall the
// calculation path.
type StoreSink struct {
	store   store.Store
	log     *zap.Logger
	timeout time.Duration
}

func NewStoreSink(st store.Store) *StoreSink {
	return &StoreSink{store: st, log: zap.L(), timeout: 3 * time.Second}
}

func (s *StoreSink) Calculated(in valuation.Input, res valuation.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.store.CreateValuation(ctx, in, res); err != nil {
		s.log.Warn("analytics: persist calculation failed", zap.Error(err))
	}
}

// MultiSink forwards each event to every child sink in order.
type MultiSink []valuation.Sink

func (m MultiSink) Calculated(in valuation.Input, res valuation.Result) {
	for _, s := range m {
		s.Calculated(in, res)
	}
}
