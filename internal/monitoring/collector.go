// Package monitoring aggregates funnel metrics: how many visitors viewed the
// wizard, finished a calculation, and left their email.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-api/internal/store"
)

// FunnelSnapshot holds a point-in-time view of the acquisition funnel.
type FunnelSnapshot struct {
	// Raw counts within the lookback window.
	PageViews  int `json:"page_views"`
	Valuations int `json:"valuations"`
	Leads      int `json:"leads"`

	// Step conversion rates, 0 when the denominator is 0.
	ViewToValuationRate float64 `json:"view_to_valuation_rate"`
	ValuationToLeadRate float64 `json:"valuation_to_lead_rate"`
	OverallRate         float64 `json:"overall_rate"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers funnel metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new funnel collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a funnel snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*FunnelSnapshot, error) {
	if lookbackHours <= 0 {
		lookbackHours = 24
	}

	snap := &FunnelSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	views, err := c.store.CountPageViews(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count page views")
	}
	snap.PageViews = views

	valuations, err := c.store.CountValuations(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count valuations")
	}
	snap.Valuations = valuations

	leads, err := c.store.CountLeads(ctx, cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count leads")
	}
	snap.Leads = leads

	if snap.PageViews > 0 {
		snap.ViewToValuationRate = float64(snap.Valuations) / float64(snap.PageViews)
		snap.OverallRate = float64(snap.Leads) / float64(snap.PageViews)
	}
	if snap.Valuations > 0 {
		snap.ValuationToLeadRate = float64(snap.Leads) / float64(snap.Valuations)
	}

	return snap, nil
}
