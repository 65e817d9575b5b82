package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brandworks/siteprofiler/internal/profile"
)

func TestClassifyPaths(t *testing.T) {
	t.Parallel()

	c := NewDefault()

	tests := []struct {
		name     string
		url      string
		title    string
		headings []string
		want     profile.PageType
	}{
		{name: "homepage root", url: "https://acme.com/", want: profile.PageTypeHomepage},
		{name: "homepage no path", url: "https://acme.com", want: profile.PageTypeHomepage},
		{name: "about exact", url: "https://acme.com/about", want: profile.PageTypeAbout},
		{name: "about trailing slash", url: "https://acme.com/about-us/", want: profile.PageTypeAbout},
		{name: "about subpage", url: "https://acme.com/about/leadership", want: profile.PageTypeAbout},
		{name: "blog index", url: "https://acme.com/blog", want: profile.PageTypeBlog},
		{name: "blog post", url: "https://acme.com/blog/my-first-post", want: profile.PageTypeBlogPost},
		{name: "news post", url: "https://acme.com/news/2024-launch", want: profile.PageTypeBlogPost},
		{name: "practice area prefix", url: "https://acme.com/practice-areas/personal-injury", want: profile.PageTypePracticeArea},
		{name: "practice area keyword outside prefix", url: "https://acme.com/family-law", want: profile.PageTypePracticeArea},
		{name: "services", url: "https://acme.com/services", want: profile.PageTypeService},
		{name: "solutions prefix", url: "https://acme.com/solutions/analytics", want: profile.PageTypeService},
		{name: "product page", url: "https://acme.com/products/widget", want: profile.PageTypeProduct},
		{name: "pricing", url: "https://acme.com/pricing", want: profile.PageTypePricing},
		{name: "features", url: "https://acme.com/features", want: profile.PageTypeFeatures},
		{name: "case study", url: "https://acme.com/case-studies/bigco", want: profile.PageTypeCaseStudy},
		{name: "docs", url: "https://acme.com/docs/quickstart", want: profile.PageTypeDocumentation},
		{name: "faq", url: "https://acme.com/faq", want: profile.PageTypeFAQ},
		{name: "contact", url: "https://acme.com/contact", want: profile.PageTypeContact},
		{name: "careers", url: "https://acme.com/careers", want: profile.PageTypeCareers},
		{name: "privacy", url: "https://acme.com/privacy-policy", want: profile.PageTypeLegal},
		{name: "terms", url: "https://acme.com/terms", want: profile.PageTypeLegal},
		{name: "mystery path no content", url: "https://acme.com/xyzzy", want: profile.PageTypeOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.url, tt.title, tt.headings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyContentFallback(t *testing.T) {
	t.Parallel()

	c := NewDefault()

	tests := []struct {
		name     string
		url      string
		title    string
		headings []string
		want     profile.PageType
	}{
		{
			name:     "faq heading",
			url:      "https://acme.com/support",
			title:    "Support",
			headings: []string{"Frequently Asked Questions"},
			want:     profile.PageTypeFAQ,
		},
		{
			name:  "about title",
			url:   "https://acme.com/who-we-are",
			title: "About Us - Acme",
			want:  profile.PageTypeAbout,
		},
		{
			name:     "services heading",
			url:      "https://acme.com/expertise",
			headings: []string{"What We Do"},
			want:     profile.PageTypeService,
		},
		{
			name:  "contact title",
			url:   "https://acme.com/reach",
			title: "Get in Touch",
			want:  profile.PageTypeContact,
		},
		{
			name: "nothing matches",
			url:  "https://acme.com/misc",
			want: profile.PageTypeOther,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.url, tt.title, tt.headings)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPathBeatsContent(t *testing.T) {
	t.Parallel()

	c := NewDefault()

	// A pricing path with FAQ-looking content stays pricing.
	got := c.Classify("https://acme.com/pricing", "Plans", []string{"Frequently Asked Questions"})
	assert.Equal(t, profile.PageTypePricing, got)
}
