// Package valuation implements the business value estimation pipeline: static
// multiple tables, audience tier tables, age premiums, and the calculator that
// combines them into a single point estimate with a range, percentile, and
// confidence label. All amounts are whole KRW; denomination conversion happens
// only in FormatKRW.
package valuation

import "strings"

// Category identifies a business archetype. Every table in this package has a
// defined fallback for CategoryUnknown, so lookups never fail.
type Category string

const (
	CategoryVideo       Category = "video"
	CategoryShortVideo  Category = "short_video"
	CategoryImageSocial Category = "image_social"
	CategoryBlog        Category = "blog"
	CategoryEcommerce   Category = "ecommerce"
	CategorySaaS        Category = "saas"
	CategoryWebsite     Category = "website"
	CategoryUnknown     Category = "unknown"
)

// categoryAliases maps the free-form strings the wizard has historically sent
// (English tags, legacy tags, Korean UI labels) to canonical categories.
var categoryAliases = map[string]Category{
	"video":        CategoryVideo,
	"youtube":      CategoryVideo,
	"yt":           CategoryVideo,
	"유튜브":          CategoryVideo,
	"채널":           CategoryVideo,
	"short_video":  CategoryShortVideo,
	"shorts":       CategoryShortVideo,
	"shortform":    CategoryShortVideo,
	"tiktok":       CategoryShortVideo,
	"reels":        CategoryShortVideo,
	"틱톡":           CategoryShortVideo,
	"숏폼":           CategoryShortVideo,
	"image_social": CategoryImageSocial,
	"instagram":    CategoryImageSocial,
	"insta":        CategoryImageSocial,
	"sns":          CategoryImageSocial,
	"인스타그램":        CategoryImageSocial,
	"인스타":          CategoryImageSocial,
	"blog":         CategoryBlog,
	"blog_content": CategoryBlog,
	"naverblog":    CategoryBlog,
	"블로그":          CategoryBlog,
	"ecommerce":    CategoryEcommerce,
	"e-commerce":   CategoryEcommerce,
	"commerce":     CategoryEcommerce,
	"store":        CategoryEcommerce,
	"smartstore":   CategoryEcommerce,
	"쇼핑몰":          CategoryEcommerce,
	"이커머스":         CategoryEcommerce,
	"스마트스토어":       CategoryEcommerce,
	"saas":         CategorySaaS,
	"software":     CategorySaaS,
	"app":          CategorySaaS,
	"사스":           CategorySaaS,
	"website":      CategoryWebsite,
	"web":          CategoryWebsite,
	"site":         CategoryWebsite,
	"homepage":     CategoryWebsite,
	"웹사이트":         CategoryWebsite,
}

// ParseCategory canonicalizes a raw business-type string. Unrecognized input
// resolves to CategoryUnknown, never an error.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "")
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryUnknown
}

// AudienceBased reports whether the category supports audience-based
// valuation, i.e. has a per-follower tier table.
func (c Category) AudienceBased() bool {
	switch c {
	case CategoryVideo, CategoryShortVideo, CategoryImageSocial:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }
