package valuation

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// MultiplierPair holds the coefficients applied to annualized revenue and
// profit to estimate a lump-sum value.
type MultiplierPair struct {
	Revenue float64 `yaml:"revenue" json:"revenue"`
	Profit  float64 `yaml:"profit" json:"profit"`
}

// localMarketDiscount adjusts reference-market (US) multiples to the local
// market. Applied exactly once per lookup, never compounded.
const localMarketDiscount = 0.7

// referenceMultiples holds reference-market multiples per category, derived
// from published micro-acquisition marketplace data.
var referenceMultiples = map[Category]MultiplierPair{
	CategoryVideo:       {Revenue: 1.2, Profit: 2.2},
	CategoryShortVideo:  {Revenue: 1.0, Profit: 1.8},
	CategoryImageSocial: {Revenue: 1.1, Profit: 2.0},
	CategoryBlog:        {Revenue: 1.3, Profit: 2.3},
	CategoryEcommerce:   {Revenue: 1.5, Profit: 2.8},
	CategorySaaS:        {Revenue: 3.0, Profit: 4.5},
	CategoryWebsite:     {Revenue: 1.0, Profit: 1.6},
}

// defaultMultiplierPair is used for unrecognized categories. Deliberately
// conservative; results built on it carry low confidence.
var defaultMultiplierPair = MultiplierPair{Revenue: 0.8, Profit: 1.15}

// ReferenceMultiplier returns the reference-market pair for a category, or
// the default pair when the category has no entry.
func ReferenceMultiplier(c Category) MultiplierPair {
	if p, ok := referenceMultiples[c]; ok {
		return p
	}
	return defaultMultiplierPair
}

// Multiplier returns the local-market pair: the reference pair with the
// market discount applied once to both components.
func Multiplier(c Category) MultiplierPair {
	p := ReferenceMultiplier(c)
	return MultiplierPair{
		Revenue: p.Revenue * localMarketDiscount,
		Profit:  p.Profit * localMarketDiscount,
	}
}

// LoadMultiplierOverrides parses a YAML document mapping category names to
// reference-market multiplier pairs. Overrides let the tables be revised
// without a release; unknown category keys are rejected so typos surface at
// startup rather than silently falling through to defaults.
func LoadMultiplierOverrides(r io.Reader) (map[Category]MultiplierPair, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "valuation: read overrides")
	}

	var raw map[string]MultiplierPair
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "valuation: parse overrides")
	}

	out := make(map[Category]MultiplierPair, len(raw))
	for name, pair := range raw {
		c := ParseCategory(name)
		if c == CategoryUnknown {
			return nil, eris.Errorf("valuation: override for unrecognized category %q", name)
		}
		if pair.Revenue < 0 || pair.Profit < 0 {
			return nil, eris.Errorf("valuation: negative multiplier for category %q", name)
		}
		out[c] = pair
	}
	return out, nil
}
