// Package aggregate reduces classified pages into the fixed content buckets
// handed to the summarizer. Bucket membership depends only on page type, so
// the reduction is order-independent; per-bucket character caps bound the
// prompt size sent to the language model.
package aggregate

import (
	"strings"
	"unicode/utf8"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// Caps holds the per-bucket character budgets and the heading-list cap.
type Caps struct {
	CompanyInfo         int
	ProductsAndServices int
	ValuePropositions   int
	TargetAudience      int
	BlogTopics          int
	PricingInfo         int
	TeamInfo            int
	MaxHeadings         int
}

// DefaultCaps returns the stock character budgets.
func DefaultCaps() Caps {
	return Caps{
		CompanyInfo:         5000,
		ProductsAndServices: 6000,
		ValuePropositions:   3000,
		TargetAudience:      3000,
		BlogTopics:          2000,
		PricingInfo:         3000,
		TeamInfo:            2000,
		MaxHeadings:         100,
	}
}

// bucketTypes is the fixed page-type to bucket mapping.
var bucketTypes = map[string][]profile.PageType{
	"company":  {profile.PageTypeHomepage, profile.PageTypeAbout},
	"products": {profile.PageTypeProduct, profile.PageTypeService, profile.PageTypePracticeArea, profile.PageTypeFeatures},
	"value":    {profile.PageTypeHomepage, profile.PageTypeFeatures, profile.PageTypeCaseStudy},
	"audience": {profile.PageTypeCaseStudy, profile.PageTypeFAQ, profile.PageTypeDocumentation},
	"blog":     {profile.PageTypeBlog, profile.PageTypeBlogPost},
	"pricing":  {profile.PageTypePricing},
	"team":     {profile.PageTypeAbout, profile.PageTypeCareers},
}

// Aggregator folds pages into AggregatedContent.
type Aggregator struct {
	caps Caps
}

// New builds an Aggregator with the given caps.
func New(caps Caps) *Aggregator {
	return &Aggregator{caps: caps}
}

// Reduce buckets page text by type, renders the navigation summary, and
// collects headings. The output is read-only derived data.
func (a *Aggregator) Reduce(pages []profile.CrawledPage, nav []profile.NavigationItem) profile.AggregatedContent {
	buckets := make(map[string][]string, len(bucketTypes))
	for name, types := range bucketTypes {
		for _, page := range pages {
			if !typeIn(page.Type, types) {
				continue
			}
			if entry := formatPage(page); entry != "" {
				buckets[name] = append(buckets[name], entry)
			}
		}
	}

	var headings []string
	for _, page := range pages {
		for _, h := range page.Headings {
			if a.caps.MaxHeadings > 0 && len(headings) >= a.caps.MaxHeadings {
				break
			}
			headings = append(headings, h)
		}
	}

	return profile.AggregatedContent{
		CompanyInfo:         joinCapped(buckets["company"], a.caps.CompanyInfo),
		ProductsAndServices: joinCapped(buckets["products"], a.caps.ProductsAndServices),
		ValuePropositions:   joinCapped(buckets["value"], a.caps.ValuePropositions),
		TargetAudience:      joinCapped(buckets["audience"], a.caps.TargetAudience),
		BlogTopics:          joinCapped(buckets["blog"], a.caps.BlogTopics),
		PricingInfo:         joinCapped(buckets["pricing"], a.caps.PricingInfo),
		TeamInfo:            joinCapped(buckets["team"], a.caps.TeamInfo),
		AllHeadings:         headings,
		NavigationSummary:   profile.RenderNavigation(nav),
	}
}

func formatPage(page profile.CrawledPage) string {
	body := strings.TrimSpace(page.BodyText)
	title := strings.TrimSpace(page.Title)
	if body == "" && title == "" {
		return ""
	}
	return "[" + title + "]\n" + body
}

func joinCapped(entries []string, limit int) string {
	joined := strings.Join(entries, "\n\n")
	if limit > 0 && len(joined) > limit {
		// Back the cut off to a rune boundary so the cap never splits a
		// multi-byte character.
		cut := limit
		for cut > 0 && !utf8.RuneStart(joined[cut]) {
			cut--
		}
		joined = joined[:cut]
	}
	return joined
}

func typeIn(t profile.PageType, types []profile.PageType) bool {
	for _, candidate := range types {
		if t == candidate {
			return true
		}
	}
	return false
}
