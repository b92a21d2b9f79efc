package valuation

import "strings"

// AgeBucket is a discrete operating-age range.
type AgeBucket string

const (
	AgeUnder6M AgeBucket = "under_6m"
	Age6To12M  AgeBucket = "6_12m"
	Age1To2Y   AgeBucket = "1_2y"
	Age2To3Y   AgeBucket = "2_3y"
	Age3YPlus  AgeBucket = "3y_plus"
)

// Trend tags how a category's value develops over the given age range.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendVolatile   Trend = "volatile"
)

// AgePremium is the multiplicative premium/discount for a (category, bucket)
// pair, with display metadata for the transparency UI.
type AgePremium struct {
	Multiplier float64 `json:"multiplier"`
	Rationale  string  `json:"rationale"`
	Trend      Trend   `json:"trend"`
}

// ageBucketAliases maps the spellings seen in the wild (wizard labels, legacy
// tags, raw range strings, Korean labels) to canonical buckets.
var ageBucketAliases = map[string]AgeBucket{
	"under_6m":     AgeUnder6M,
	"under6months": AgeUnder6M,
	"<6mo":         AgeUnder6M,
	"0-6":          AgeUnder6M,
	"0~6":          AgeUnder6M,
	"new":          AgeUnder6M,
	"6개월미만":        AgeUnder6M,
	"6_12m":        Age6To12M,
	"6-12":         Age6To12M,
	"6~12":         Age6To12M,
	"6mo-1y":       Age6To12M,
	"6months-1year": Age6To12M,
	"6개월~1년":       Age6To12M,
	"1_2y":         Age1To2Y,
	"1-2":          Age1To2Y,
	"1~2":          Age1To2Y,
	"1-2y":         Age1To2Y,
	"1-2years":     Age1To2Y,
	"1년~2년":        Age1To2Y,
	"1~2년":         Age1To2Y,
	"2_3y":         Age2To3Y,
	"2-3":          Age2To3Y,
	"2~3":          Age2To3Y,
	"2-3y":         Age2To3Y,
	"2-3years":     Age2To3Y,
	"2년~3년":        Age2To3Y,
	"2~3년":         Age2To3Y,
	"3y_plus":      Age3YPlus,
	"3+":           Age3YPlus,
	"3y+":          Age3YPlus,
	"3plus":        Age3YPlus,
	"over3years":   Age3YPlus,
	"3년이상":         Age3YPlus,
}

// ParseAgeBucket canonicalizes a raw operating-age string. Unrecognized input
// falls back to the middle bucket rather than erroring, so a malformed wizard
// state still produces a sane estimate.
func ParseAgeBucket(s string) AgeBucket {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "")
	if b, ok := ageBucketAliases[key]; ok {
		return b
	}
	return Age1To2Y
}

// agePremiums holds the per-category, per-bucket premium tables. Multipliers
// stay within [0.7, 2.0].
var agePremiums = map[Category]map[AgeBucket]AgePremium{
	CategoryEcommerce: {
		AgeUnder6M: {0.8, "too young to show repeat-purchase behavior", TrendStable},
		Age6To12M:  {1.2, "first full season of sales data", TrendIncreasing},
		Age1To2Y:   {1.8, "proven product-market fit and reorder base", TrendIncreasing},
		Age2To3Y:   {1.9, "stable supplier and logistics relationships", TrendIncreasing},
		Age3YPlus:  {2.0, "established brand with defensible repeat revenue", TrendIncreasing},
	},
	CategorySaaS: {
		AgeUnder6M: {0.9, "churn profile not yet observable", TrendStable},
		Age6To12M:  {1.1, "early retention curve visible", TrendIncreasing},
		Age1To2Y:   {1.4, "net revenue retention measurable over full cycles", TrendIncreasing},
		Age2To3Y:   {1.55, "compounding recurring revenue base", TrendIncreasing},
		Age3YPlus:  {1.7, "mature cohort data supports premium multiples", TrendIncreasing},
	},
	CategoryVideo: {
		AgeUnder6M: {0.7, "algorithm exposure not yet stabilized", TrendVolatile},
		Age6To12M:  {1.0, "subscriber base forming", TrendStable},
		Age1To2Y:   {1.3, "consistent upload history and watch-time data", TrendIncreasing},
		Age2To3Y:   {1.5, "durable audience relationship", TrendIncreasing},
		Age3YPlus:  {1.6, "evergreen back catalog keeps earning", TrendIncreasing},
	},
	CategoryShortVideo: {
		AgeUnder6M: {0.9, "single viral spike risk", TrendVolatile},
		Age6To12M:  {1.2, "sustained output past the first trend cycle", TrendIncreasing},
		Age1To2Y:   {1.4, "survived multiple trend rotations", TrendIncreasing},
		Age2To3Y:   {1.3, "short-form audiences decay without reinvention", TrendVolatile},
		Age3YPlus:  {1.2, "format fatigue discounts older accounts", TrendVolatile},
	},
	CategoryImageSocial: {
		AgeUnder6M: {0.8, "follower quality unverified", TrendStable},
		Age6To12M:  {1.1, "engagement pattern established", TrendIncreasing},
		Age1To2Y:   {1.3, "steady sponsored-post demand", TrendIncreasing},
		Age2To3Y:   {1.4, "repeat advertiser relationships", TrendIncreasing},
		Age3YPlus:  {1.45, "long-lived accounts hold advertiser trust", TrendStable},
	},
	CategoryBlog: {
		AgeUnder6M: {0.7, "no search-ranking history", TrendStable},
		Age6To12M:  {0.9, "indexing and early rankings in place", TrendIncreasing},
		Age1To2Y:   {1.2, "domain authority accruing", TrendIncreasing},
		Age2To3Y:   {1.4, "stable organic traffic base", TrendIncreasing},
		Age3YPlus:  {1.6, "aged domains command an SEO premium", TrendIncreasing},
	},
	CategoryWebsite: {
		AgeUnder6M: {0.8, "traffic source mix unproven", TrendStable},
		Age6To12M:  {1.0, "baseline traffic established", TrendStable},
		Age1To2Y:   {1.2, "recurring visitor base", TrendIncreasing},
		Age2To3Y:   {1.3, "diversified acquisition channels", TrendIncreasing},
		Age3YPlus:  {1.4, "operating history de-risks the purchase", TrendIncreasing},
	},
}

// neutralAgePremium is returned when a category has no age table.
var neutralAgePremium = AgePremium{
	Multiplier: 1.0,
	Rationale:  "no operating-history data for this category",
	Trend:      TrendStable,
}

// GetAgePremium returns the premium for a (category, bucket) pair. Categories
// without a table and unmapped buckets resolve to a neutral 1.0 premium.
func GetAgePremium(c Category, b AgeBucket) AgePremium {
	table, ok := agePremiums[c]
	if !ok {
		return neutralAgePremium
	}
	if p, ok := table[b]; ok {
		return p
	}
	return neutralAgePremium
}
