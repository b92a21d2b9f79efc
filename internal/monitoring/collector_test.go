package monitoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/valuation-api/internal/store"
	"github.com/sells-group/valuation-api/internal/valuation"
)

func newFunnelStore(t *testing.T) store.Store {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCollectEmptyFunnel(t *testing.T) {
	c := NewCollector(newFunnelStore(t))

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Zero(t, snap.PageViews)
	assert.Zero(t, snap.Valuations)
	assert.Zero(t, snap.Leads)
	assert.Zero(t, snap.ViewToValuationRate)
	assert.Zero(t, snap.ValuationToLeadRate)
	assert.Zero(t, snap.OverallRate)
	assert.Equal(t, 24, snap.LookbackHours)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollectConversionRates(t *testing.T) {
	st := newFunnelStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := st.RecordPageView(ctx, "/valuation", "", "sess")
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		_, err := st.CreateValuation(ctx,
			valuation.Input{Category: valuation.CategoryBlog, MonthlyRevenue: 1_000_000},
			valuation.Result{Value: 10_000_000},
		)
		require.NoError(t, err)
	}
	_, err := st.CreateLead(ctx, "lead@example.com", "", "")
	require.NoError(t, err)

	snap, err := NewCollector(st).Collect(ctx, 24)
	require.NoError(t, err)

	assert.Equal(t, 10, snap.PageViews)
	assert.Equal(t, 4, snap.Valuations)
	assert.Equal(t, 1, snap.Leads)
	assert.InDelta(t, 0.4, snap.ViewToValuationRate, 0.0001)
	assert.InDelta(t, 0.25, snap.ValuationToLeadRate, 0.0001)
	assert.InDelta(t, 0.1, snap.OverallRate, 0.0001)
}

func TestCollectDefaultsLookback(t *testing.T) {
	c := NewCollector(newFunnelStore(t))

	snap, err := c.Collect(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 24, snap.LookbackHours)
}
