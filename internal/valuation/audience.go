package valuation

import (
	"math"
	"strings"
)

// Tier is a follower/subscriber count range [Min, Max) with a per-unit KRW
// value. The last tier of each platform is unbounded above. Tiers partition
// [0, ∞) with no gaps or overlaps, and per-unit values never decrease with
// tier order.
type Tier struct {
	Min     int64   `json:"min"`
	Max     int64   `json:"max"` // exclusive; math.MaxInt64 for the last tier
	PerUnit float64 `json:"per_unit"`
	Label   string  `json:"label"`
}

// audienceTiers holds per-subscriber (video) and per-follower (short-form,
// image social) KRW values by audience size.
var audienceTiers = map[Category][]Tier{
	CategoryVideo: {
		{0, 1_000, 50, "nano"},
		{1_000, 10_000, 120, "micro"},
		{10_000, 100_000, 250, "mid"},
		{100_000, 1_000_000, 400, "macro"},
		{1_000_000, math.MaxInt64, 600, "mega"},
	},
	CategoryShortVideo: {
		{0, 1_000, 20, "nano"},
		{1_000, 10_000, 50, "micro"},
		{10_000, 100_000, 100, "mid"},
		{100_000, 1_000_000, 180, "macro"},
		{1_000_000, math.MaxInt64, 300, "mega"},
	},
	CategoryImageSocial: {
		{0, 1_000, 30, "nano"},
		{1_000, 10_000, 70, "micro"},
		{10_000, 100_000, 150, "mid"},
		{100_000, 1_000_000, 250, "macro"},
		{1_000_000, math.MaxInt64, 450, "mega"},
	},
}

// categoryPremiums adjusts per-unit values by content vertical. Missing
// entries default to 1.0.
var categoryPremiums = map[Category]map[string]float64{
	CategoryVideo: {
		"finance":       1.5,
		"education":     1.4,
		"tech":          1.3,
		"beauty":        1.2,
		"food":          1.1,
		"gaming":        1.1,
		"entertainment": 1.0,
		"vlog":          0.9,
	},
	CategoryShortVideo: {
		"beauty":        1.3,
		"food":          1.2,
		"dance":         1.1,
		"comedy":        1.0,
		"entertainment": 1.0,
	},
	CategoryImageSocial: {
		"fashion":   1.4,
		"beauty":    1.3,
		"travel":    1.2,
		"food":      1.1,
		"fitness":   1.1,
		"lifestyle": 1.0,
	},
}

// engagementBand classifies an engagement ratio (views or likes per audience
// unit) into a bonus multiplier. Sub-1.0 bonuses penalize dead audiences.
type engagementBand struct {
	Min   float64
	Bonus float64
	Label string
}

// engagementBands are ordered ascending by Min; classification picks the last
// band whose Min the ratio reaches. Boundaries are platform-specific: video
// ratios are views per subscriber, short-form views per follower, image
// social likes per follower.
var engagementBands = map[Category][]engagementBand{
	CategoryVideo: {
		{0, 0.7, "low"},
		{0.1, 1.0, "medium"},
		{0.3, 1.3, "high"},
		{1.0, 1.6, "mega"},
	},
	CategoryShortVideo: {
		{0, 0.8, "low"},
		{0.5, 1.0, "medium"},
		{2.0, 1.3, "high"},
		{5.0, 1.7, "mega"},
	},
	CategoryImageSocial: {
		{0, 0.8, "low"},
		{0.01, 1.0, "medium"},
		{0.03, 1.25, "high"},
		{0.08, 1.5, "mega"},
	},
}

// TierFor returns the tier containing size for the platform (inclusive at
// Min, exclusive at Max). Platforms without a tier table return a zero tier.
func TierFor(platform Category, size int64) Tier {
	tiers, ok := audienceTiers[platform]
	if !ok {
		return Tier{}
	}
	for _, t := range tiers {
		if size >= t.Min && size < t.Max {
			return t
		}
	}
	// Unreachable while the tables partition [0, MaxInt64).
	return tiers[len(tiers)-1]
}

// CategoryPremium returns the content-vertical premium for a platform, 1.0
// when the vertical is unrecognized.
func CategoryPremium(platform Category, contentCategory string) float64 {
	table, ok := categoryPremiums[platform]
	if !ok {
		return 1.0
	}
	key := strings.ToLower(strings.TrimSpace(contentCategory))
	if p, ok := table[key]; ok {
		return p
	}
	return 1.0
}

// EngagementBonus classifies an engagement ratio into the platform's band and
// returns its multiplier with the band label. Platforms without a band table,
// and non-positive ratios, return a neutral 1.0.
func EngagementBonus(platform Category, ratio float64) (float64, string) {
	bands, ok := engagementBands[platform]
	if !ok || ratio <= 0 {
		return 1.0, ""
	}
	bonus, label := bands[0].Bonus, bands[0].Label
	for _, b := range bands {
		if ratio >= b.Min {
			bonus, label = b.Bonus, b.Label
		}
	}
	return bonus, label
}

// ValueForAudience computes the audience-based value in whole KRW: tier
// per-unit value × size, adjusted by the content-vertical premium and, when an
// engagement metric (average views or likes) is supplied, the engagement
// band bonus. Size 0 yields 0 regardless of other inputs.
func ValueForAudience(platform Category, size int64, contentCategory string, engagementMetric float64) int64 {
	if size <= 0 {
		return 0
	}
	tier := TierFor(platform, size)
	value := float64(size) * tier.PerUnit
	value *= CategoryPremium(platform, contentCategory)

	if engagementMetric > 0 {
		ratio := engagementMetric / float64(size)
		bonus, _ := EngagementBonus(platform, ratio)
		value *= bonus
	}

	return int64(math.Round(value))
}
