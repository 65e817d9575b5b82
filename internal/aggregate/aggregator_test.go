package aggregate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/brandworks/siteprofiler/internal/profile"
)

func TestReduceBucketsByType(t *testing.T) {
	t.Parallel()

	pages := []profile.CrawledPage{
		{Type: profile.PageTypeHomepage, Title: "Acme", BodyText: "We make widgets."},
		{Type: profile.PageTypeAbout, Title: "About", BodyText: "Founded in 2010.", Headings: []string{"Our Story"}},
		{Type: profile.PageTypeService, Title: "Consulting", BodyText: "We advise."},
		{Type: profile.PageTypePricing, Title: "Pricing", BodyText: "Plans from $10."},
		{Type: profile.PageTypeBlogPost, Title: "Widget Trends", BodyText: "Widgets are in."},
		{Type: profile.PageTypeCareers, Title: "Careers", BodyText: "Join us."},
		{Type: profile.PageTypeFAQ, Title: "FAQ", BodyText: "How do widgets work?"},
		{Type: profile.PageTypeLegal, Title: "Privacy", BodyText: "We respect privacy."},
	}

	agg := New(DefaultCaps())
	got := agg.Reduce(pages, nil)

	assert.Contains(t, got.CompanyInfo, "[Acme]\nWe make widgets.")
	assert.Contains(t, got.CompanyInfo, "Founded in 2010.")
	assert.Contains(t, got.ProductsAndServices, "We advise.")
	assert.Contains(t, got.ValuePropositions, "We make widgets.")
	assert.Contains(t, got.TargetAudience, "How do widgets work?")
	assert.Contains(t, got.BlogTopics, "Widgets are in.")
	assert.Contains(t, got.PricingInfo, "Plans from $10.")
	assert.Contains(t, got.TeamInfo, "Founded in 2010.")
	assert.Contains(t, got.TeamInfo, "Join us.")

	// Legal pages feed no bucket.
	assert.NotContains(t, got.CompanyInfo, "privacy")
	assert.Equal(t, []string{"Our Story"}, got.AllHeadings)
}

func TestReduceRespectsCaps(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("widgets ", 200)
	pages := []profile.CrawledPage{
		{Type: profile.PageTypeHomepage, Title: "A", BodyText: long},
		{Type: profile.PageTypeHomepage, Title: "B", BodyText: long},
	}

	caps := DefaultCaps()
	caps.CompanyInfo = 100
	caps.MaxHeadings = 2

	agg := New(caps)
	got := agg.Reduce(pages, nil)
	assert.LessOrEqual(t, len(got.CompanyInfo), 100)
}

func TestReduceCapKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	pages := []profile.CrawledPage{
		{Type: profile.PageTypeHomepage, Title: "Acme", BodyText: strings.Repeat("é", 50)},
	}

	caps := DefaultCaps()
	caps.CompanyInfo = 10

	got := New(caps).Reduce(pages, nil)
	assert.LessOrEqual(t, len(got.CompanyInfo), 10)
	assert.True(t, utf8.ValidString(got.CompanyInfo), "cap must not split a rune")
}

func TestReduceCapsHeadings(t *testing.T) {
	t.Parallel()

	pages := []profile.CrawledPage{
		{Type: profile.PageTypeOther, Title: "X", BodyText: "x", Headings: []string{"h1", "h2", "h3"}},
		{Type: profile.PageTypeOther, Title: "Y", BodyText: "y", Headings: []string{"h4", "h5"}},
	}

	caps := DefaultCaps()
	caps.MaxHeadings = 4

	agg := New(caps)
	got := agg.Reduce(pages, nil)
	assert.Equal(t, []string{"h1", "h2", "h3", "h4"}, got.AllHeadings)
}

func TestReduceSkipsEmptyPages(t *testing.T) {
	t.Parallel()

	pages := []profile.CrawledPage{
		{Type: profile.PageTypeHomepage},
		{Type: profile.PageTypeHomepage, Title: "Acme", BodyText: "content"},
	}

	agg := New(DefaultCaps())
	got := agg.Reduce(pages, nil)
	assert.Equal(t, "[Acme]\ncontent", got.CompanyInfo)
}

func TestReduceRendersNavigation(t *testing.T) {
	t.Parallel()

	nav := []profile.NavigationItem{
		{Label: "Home", Href: "/"},
		{Label: "About", Href: "/about"},
	}

	agg := New(DefaultCaps())
	got := agg.Reduce(nil, nav)
	assert.Equal(t, "- Home\n- About", got.NavigationSummary)
}
