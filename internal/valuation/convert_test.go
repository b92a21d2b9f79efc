package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertFollowerValue_RatioDivide(t *testing.T) {
	// 250 KRW per subscriber on the reference platform.
	got := ConvertFollowerValue(250, CategoryShortVideo, "comedy")
	assert.InDelta(t, 100.0, got, 0.001) // 250 / 2.5

	got = ConvertFollowerValue(250, CategoryImageSocial, "lifestyle")
	assert.InDelta(t, 138.888, got, 0.01) // 250 / 1.8
}

func TestConvertFollowerValue_CategoryAdjust(t *testing.T) {
	plain := ConvertFollowerValue(250, CategoryImageSocial, "lifestyle")
	fashion := ConvertFollowerValue(250, CategoryImageSocial, "fashion")
	assert.InDelta(t, plain*1.3, fashion, 0.01)
}

func TestConvertFollowerValue_UnknownTargetUsesUnitRatio(t *testing.T) {
	got := ConvertFollowerValue(250, CategoryBlog, "anything")
	assert.InDelta(t, 250.0, got, 0.001)
}

func TestConvertFollowerValue_Monotonic(t *testing.T) {
	var prev float64 = -1
	for _, base := range []float64{0, 10, 50, 100, 250, 600, 1_000} {
		got := ConvertFollowerValue(base, CategoryShortVideo, "beauty")
		assert.GreaterOrEqual(t, got, prev, "base %v", base)
		prev = got
	}
}

func TestConvertFollowerValue_NonPositiveBase(t *testing.T) {
	assert.Equal(t, 0.0, ConvertFollowerValue(0, CategoryShortVideo, "beauty"))
	assert.Equal(t, 0.0, ConvertFollowerValue(-5, CategoryShortVideo, "beauty"))
}
