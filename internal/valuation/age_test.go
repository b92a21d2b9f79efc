package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgeBucket(t *testing.T) {
	tests := []struct {
		in   string
		want AgeBucket
	}{
		{"under_6m", AgeUnder6M},
		{"<6mo", AgeUnder6M},
		{"6개월 미만", AgeUnder6M},
		{"6-12", Age6To12M},
		{"6개월~1년", Age6To12M},
		{"1-2y", Age1To2Y},
		{"1년~2년", Age1To2Y},
		{"2-3 years", Age2To3Y},
		{"2년~3년", Age2To3Y},
		{"3+", Age3YPlus},
		{"3년 이상", Age3YPlus},
		{"Over 3 Years", Age3YPlus},
		// Canonicalization failure falls back to the middle bucket.
		{"whenever", Age1To2Y},
		{"", Age1To2Y},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAgeBucket(tt.in))
		})
	}
}

func TestAgePremiums_WithinBounds(t *testing.T) {
	for cat, table := range agePremiums {
		buckets := []AgeBucket{AgeUnder6M, Age6To12M, Age1To2Y, Age2To3Y, Age3YPlus}
		require.Len(t, table, len(buckets), "category %s must map every bucket", cat)
		for _, b := range buckets {
			p, ok := table[b]
			require.True(t, ok, "category %s missing bucket %s", cat, b)
			assert.GreaterOrEqual(t, p.Multiplier, 0.7, "%s/%s", cat, b)
			assert.LessOrEqual(t, p.Multiplier, 2.0, "%s/%s", cat, b)
			assert.NotEmpty(t, p.Rationale, "%s/%s", cat, b)
			assert.Contains(t, []Trend{TrendIncreasing, TrendStable, TrendVolatile}, p.Trend)
		}
	}
}

func TestGetAgePremium_Fallbacks(t *testing.T) {
	// Known pair.
	p := GetAgePremium(CategoryEcommerce, Age1To2Y)
	assert.InDelta(t, 1.8, p.Multiplier, 0.001)

	// Category without a table.
	p = GetAgePremium(CategoryUnknown, Age1To2Y)
	assert.Equal(t, neutralAgePremium, p)

	// Unmapped bucket value.
	p = GetAgePremium(CategoryVideo, AgeBucket("eternal"))
	assert.Equal(t, neutralAgePremium, p)
}
