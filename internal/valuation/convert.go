package valuation

import "strings"

// conversionRatios re-express the video platform's per-subscriber value on
// other platforms. A follower on the target platform is conventionally worth
// less than a subscriber on the reference platform, so the base value is
// divided by the ratio, never multiplied.
var conversionRatios = map[Category]float64{
	CategoryShortVideo:  2.5,
	CategoryImageSocial: 1.8,
}

// conversionCategoryAdjust corrects the converted value for verticals whose
// relative worth differs between platforms (e.g. fashion monetizes better on
// image platforms than the generic ratio implies).
var conversionCategoryAdjust = map[Category]map[string]float64{
	CategoryShortVideo: {
		"beauty": 1.2,
		"dance":  1.1,
	},
	CategoryImageSocial: {
		"fashion": 1.3,
		"beauty":  1.2,
		"travel":  1.1,
	},
}

// ConvertFollowerValue derives a per-follower value on the target platform
// from a reference per-subscriber value: fixed ratio divide, then the target
// vertical's correction factor. Monotonic in baseValue.
func ConvertFollowerValue(baseValue float64, target Category, targetCategory string) float64 {
	if baseValue <= 0 {
		return 0
	}

	ratio, ok := conversionRatios[target]
	if !ok || ratio <= 0 {
		ratio = 1.0
	}
	converted := baseValue / ratio

	if adjust, ok := conversionCategoryAdjust[target]; ok {
		if f, ok := adjust[strings.ToLower(strings.TrimSpace(targetCategory))]; ok {
			converted *= f
		}
	}
	return converted
}
