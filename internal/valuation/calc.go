package valuation

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Method identifies which computation path produced a result.
type Method string

const (
	MethodRevenueBased  Method = "revenue_based"
	MethodProfitBased   Method = "profit_based"
	MethodAudienceBased Method = "audience_based"
	MethodHybrid        Method = "hybrid"
	MethodFallback      Method = "fallback"
)

// Confidence is a coarse label for how much data backed an estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Input is one wizard submission. Amounts are whole KRW per month; the
// engagement metric is average views (video platforms) or average likes
// (image platforms). Immutable once passed to Calculate.
type Input struct {
	Category         Category  `json:"category"`
	MonthlyRevenue   int64     `json:"monthly_revenue"`
	MonthlyProfit    int64     `json:"monthly_profit"`
	AudienceSize     int64     `json:"audience_size,omitempty"`
	ContentCategory  string    `json:"content_category,omitempty"`
	EngagementMetric float64   `json:"engagement_metric,omitempty"`
	AgeBucket        AgeBucket `json:"age_bucket"`
}

// Range brackets the point estimate.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Details exposes the intermediate sub-values for the transparency UI.
type Details struct {
	FinancialValue  int64   `json:"financial_value"`
	AudienceValue   int64   `json:"audience_value"`
	FinancialWeight float64 `json:"financial_weight"`
	AgeMultiplier   float64 `json:"age_multiplier"`
	AgeRationale    string  `json:"age_rationale"`
	AgeTrend        Trend   `json:"age_trend"`
	Capped          bool    `json:"capped"`
	ComparableCount int     `json:"comparable_count"`
}

// Result is the pipeline output for one Input.
type Result struct {
	Value      int64      `json:"value"`
	Range      Range      `json:"range"`
	Percentile int        `json:"percentile"`
	Confidence Confidence `json:"confidence"`
	Method     Method     `json:"method"`
	Details    Details    `json:"details"`
}

// CompsStats summarizes comparable transactions for a category from a live
// data source.
type CompsStats struct {
	Count           int     `json:"count"`
	RevenueMultiple float64 `json:"revenue_multiple"`
	ProfitMultiple  float64 `json:"profit_multiple"`
}

// CompsSource supplies comparable-transaction statistics. Implementations may
// fail or return nil; the calculator always falls back to its static tables.
type CompsSource interface {
	Stats(ctx context.Context, c Category) (*CompsStats, error)
}

// Sink receives completed calculations. Injected instead of a process-global
// analytics object so the pipeline stays a pure function under test.
type Sink interface {
	Calculated(in Input, res Result)
}

const (
	// revenueCapMonths bounds any result at 60 months (5 years) of revenue.
	revenueCapMonths = 60

	defaultCompsTimeout = 2 * time.Second
)

// perUnitCaps bound audience-based results per follower/subscriber.
var perUnitCaps = map[Category]float64{
	CategoryVideo:       1_000,
	CategoryShortVideo:  500,
	CategoryImageSocial: 700,
}

// Calculator runs the valuation pipeline. Safe for concurrent use: all state
// is read-only after construction.
type Calculator struct {
	comps        CompsSource
	sink         Sink
	overrides    map[Category]MultiplierPair
	compsTimeout time.Duration
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithCompsSource attaches a live comparable-transaction source.
func WithCompsSource(src CompsSource) Option {
	return func(c *Calculator) { c.comps = src }
}

// WithSink attaches an analytics sink.
func WithSink(s Sink) Option {
	return func(c *Calculator) { c.sink = s }
}

// WithMultiplierOverrides replaces reference-market multiples for the given
// categories (see LoadMultiplierOverrides).
func WithMultiplierOverrides(m map[Category]MultiplierPair) Option {
	return func(c *Calculator) { c.overrides = m }
}

// WithCompsTimeout bounds the single comps-source attempt.
func WithCompsTimeout(d time.Duration) Option {
	return func(c *Calculator) { c.compsTimeout = d }
}

// NewCalculator builds a Calculator.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{compsTimeout: defaultCompsTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// multiplier returns the local-market pair for a category, honoring
// overrides. The market discount is applied here exactly once.
func (c *Calculator) multiplier(cat Category) MultiplierPair {
	ref := ReferenceMultiplier(cat)
	if p, ok := c.overrides[cat]; ok {
		ref = p
	}
	return MultiplierPair{
		Revenue: ref.Revenue * localMarketDiscount,
		Profit:  ref.Profit * localMarketDiscount,
	}
}

// Calculate produces one Result from one Input. It never returns an error:
// unrecognized categories and buckets resolve to documented defaults, a dead
// comps source degrades to the static tables, and negative numerics are
// clamped to zero as a last resort.
func (c *Calculator) Calculate(ctx context.Context, in Input) Result {
	// Defensive floor; the API layer rejects negatives before we get here.
	revenue := max64(in.MonthlyRevenue, 0)
	profit := max64(in.MonthlyProfit, 0)
	audience := max64(in.AudienceSize, 0)

	// Audience candidate. Requires a content category: without one the tier
	// value has no vertical context and the financial path rules.
	var audienceValue int64
	if audience > 0 && in.Category.AudienceBased() && in.ContentCategory != "" {
		audienceValue = ValueForAudience(in.Category, audience, in.ContentCategory, in.EngagementMetric)
	}

	// Financial candidate: profit path when profit is positive, revenue path
	// otherwise. Comps stats, when available, are averaged into the static
	// multiples.
	stats := c.fetchComps(ctx, in.Category)
	mult := c.multiplier(in.Category)
	if stats != nil && stats.Count > 0 {
		if stats.RevenueMultiple > 0 {
			mult.Revenue = (mult.Revenue + stats.RevenueMultiple) / 2
		}
		if stats.ProfitMultiple > 0 {
			mult.Profit = (mult.Profit + stats.ProfitMultiple) / 2
		}
	}

	var financialValue int64
	var financialMethod Method
	switch {
	case profit > 0:
		financialValue = int64(math.Round(float64(profit) * 12 * mult.Profit))
		financialMethod = MethodProfitBased
	case revenue > 0:
		financialValue = int64(math.Round(float64(revenue) * 12 * mult.Revenue))
		financialMethod = MethodRevenueBased
	}

	// Zero fast path: no positive financial input and no audience candidate.
	if financialValue == 0 && audienceValue == 0 {
		res := Result{
			Value:      0,
			Range:      Range{0, 0},
			Percentile: 0,
			Confidence: ConfidenceLow,
			Method:     MethodFallback,
		}
		c.emit(in, res)
		return res
	}

	// Combine candidates.
	var base float64
	var method Method
	weight := 1.0 // financial weight
	switch {
	case financialValue > 0 && audienceValue > 0:
		weight = financialWeight(float64(audienceValue) / float64(financialValue))
		base = weight*float64(financialValue) + (1-weight)*float64(audienceValue)
		method = MethodHybrid
	case audienceValue > 0:
		base = float64(audienceValue)
		method = MethodAudienceBased
		weight = 0
	default:
		base = float64(financialValue)
		method = financialMethod
	}

	// Age premium: a single multiplication against the combined base.
	premium := GetAgePremium(in.Category, in.AgeBucket)
	value := base * premium.Multiplier

	// Upper-bound clamp.
	bound := upperBound(in.Category, revenue, audience, audienceValue > 0)
	capped := false
	if bound > 0 && value > bound {
		value = bound
		capped = true
	}
	final := max64(int64(math.Round(value)), 0)

	confidence := deriveConfidence(method, stats)
	res := Result{
		Value:      final,
		Range:      valueRange(final, confidence),
		Percentile: percentile(final, audience, audienceValue > 0),
		Confidence: confidence,
		Method:     method,
		Details: Details{
			FinancialValue:  financialValue,
			AudienceValue:   audienceValue,
			FinancialWeight: weight,
			AgeMultiplier:   premium.Multiplier,
			AgeRationale:    premium.Rationale,
			AgeTrend:        premium.Trend,
			Capped:          capped,
			ComparableCount: compsCount(stats),
		},
	}

	zap.L().Info("valuation: calculated",
		zap.String("category", string(in.Category)),
		zap.String("method", string(method)),
		zap.Int64("value", final),
		zap.Int("percentile", res.Percentile),
		zap.String("confidence", string(confidence)),
		zap.Bool("capped", capped),
	)
	c.emit(in, res)
	return res
}

// fetchComps makes the single timeout-bounded attempt against the comps
// source. Every failure mode collapses to nil; the static tables carry on.
func (c *Calculator) fetchComps(ctx context.Context, cat Category) *CompsStats {
	if c.comps == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.compsTimeout)
	defer cancel()

	stats, err := c.comps.Stats(ctx, cat)
	if err != nil {
		zap.L().Warn("valuation: comps source unavailable, using static tables",
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		return nil
	}
	return stats
}

func (c *Calculator) emit(in Input, res Result) {
	if c.sink != nil {
		c.sink.Calculated(in, res)
	}
}

// financialWeight returns the financial share of a hybrid blend. The default
// 60/40 shifts toward the audience value as it outgrows the financial value.
func financialWeight(audienceToFinancial float64) float64 {
	switch {
	case audienceToFinancial > 3.0:
		return 0.3
	case audienceToFinancial > 2.0:
		return 0.4
	case audienceToFinancial > 1.5:
		return 0.5
	default:
		return 0.6
	}
}

// upperBound computes the clamp: the greater of 60 months of revenue and,
// when the audience value participated, the per-unit audience cap.
func upperBound(cat Category, revenue, audience int64, audienceUsed bool) float64 {
	bound := float64(revenue) * revenueCapMonths
	if audienceUsed {
		if unitCap, ok := perUnitCaps[cat]; ok {
			if ac := float64(audience) * unitCap; ac > bound {
				bound = ac
			}
		}
	}
	return bound
}

// percentileBrackets is a monotonic step function over final value in KRW.
var percentileBrackets = []struct {
	below int64
	pct   int
}{
	{1_000_000, 5},
	{5_000_000, 15},
	{10_000_000, 25},
	{50_000_000, 40},
	{100_000_000, 55},
	{500_000_000, 70},
	{1_000_000_000, 80},
	{5_000_000_000, 90},
}

// percentile maps the final value to a percentile, nudged by audience bracket
// when audience data contributed, clamped to [5, 95].
func percentile(value, audience int64, audienceUsed bool) int {
	pct := 95
	for _, b := range percentileBrackets {
		if value < b.below {
			pct = b.pct
			break
		}
	}

	if audienceUsed {
		switch {
		case audience >= 1_000_000:
			pct += 15
		case audience >= 100_000:
			pct += 10
		case audience >= 10_000:
			pct += 5
		case audience < 1_000:
			pct -= 10
		}
	}

	if pct < 5 {
		pct = 5
	}
	if pct > 95 {
		pct = 95
	}
	return pct
}

// deriveConfidence follows the data that backed the estimate: high needs at
// least 100 live comparables, hybrid estimates are medium, single-source
// estimates low.
func deriveConfidence(method Method, stats *CompsStats) Confidence {
	if stats != nil && stats.Count >= 100 {
		return ConfidenceHigh
	}
	if method == MethodHybrid {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// valueRange spreads the point estimate by confidence.
func valueRange(value int64, conf Confidence) Range {
	var spread float64
	switch conf {
	case ConfidenceHigh:
		spread = 0.10
	case ConfidenceMedium:
		spread = 0.20
	default:
		spread = 0.30
	}
	return Range{
		Min: int64(math.Round(float64(value) * (1 - spread))),
		Max: int64(math.Round(float64(value) * (1 + spread))),
	}
}

func compsCount(stats *CompsStats) int {
	if stats == nil {
		return 0
	}
	return stats.Count
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
