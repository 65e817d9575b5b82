// Package classify maps crawled pages onto the fixed page-type taxonomy.
//
// Path-based rules run first: they are curated and rarely wrong. Content
// rules over path+title+headings are noisier and only consulted when the
// path says nothing. First matching rule wins; the default is "other".
package classify

import (
	"net/url"
	"strings"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// PrefixRule maps a path prefix onto a page type.
type PrefixRule struct {
	Prefix string
	Type   profile.PageType
}

// ContentRule maps a keyword found in path+title+headings onto a page type.
type ContentRule struct {
	Keyword string
	Type    profile.PageType
}

// Rules is the immutable rule set injected into a Classifier. Keeping this
// as data rather than code allows per-deployment tuning and isolated tests.
type Rules struct {
	ExactPaths           map[string]profile.PageType
	PathPrefixes         []PrefixRule
	PracticeAreaKeywords []string
	ContentFallback      []ContentRule
}

// Classifier classifies pages. It is a pure function over its rule tables.
type Classifier struct {
	rules Rules
}

// New builds a Classifier from the given rules.
func New(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefault builds a Classifier with the stock rule tables.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// DefaultRules returns the stock rule tables.
func DefaultRules() Rules {
	return Rules{
		ExactPaths: map[string]profile.PageType{
			"/":           profile.PageTypeHomepage,
			"/home":       profile.PageTypeHomepage,
			"/index":      profile.PageTypeHomepage,
			"/index.html": profile.PageTypeHomepage,
			"/about":      profile.PageTypeAbout,
			"/about-us":   profile.PageTypeAbout,
			"/our-story":  profile.PageTypeAbout,
			"/team":       profile.PageTypeAbout,
			"/our-team":   profile.PageTypeAbout,
			"/blog":       profile.PageTypeBlog,
			"/news":       profile.PageTypeBlog,
			"/articles":   profile.PageTypeBlog,
			"/insights":   profile.PageTypeBlog,
			"/resources":  profile.PageTypeBlog,
			"/products":   profile.PageTypeProduct,
			"/services":   profile.PageTypeService,
			"/pricing":    profile.PageTypePricing,
			"/plans":      profile.PageTypePricing,
			"/rates":      profile.PageTypePricing,
			"/features":   profile.PageTypeFeatures,
			"/faq":        profile.PageTypeFAQ,
			"/faqs":       profile.PageTypeFAQ,
			"/help":       profile.PageTypeFAQ,
			"/contact":    profile.PageTypeContact,
			"/contact-us": profile.PageTypeContact,
			"/careers":    profile.PageTypeCareers,
			"/jobs":       profile.PageTypeCareers,
		},
		PathPrefixes: []PrefixRule{
			{Prefix: "/about", Type: profile.PageTypeAbout},
			{Prefix: "/practice-areas", Type: profile.PageTypePracticeArea},
			{Prefix: "/practice-area", Type: profile.PageTypePracticeArea},
			{Prefix: "/blog/", Type: profile.PageTypeBlogPost},
			{Prefix: "/news/", Type: profile.PageTypeBlogPost},
			{Prefix: "/articles/", Type: profile.PageTypeBlogPost},
			{Prefix: "/insights/", Type: profile.PageTypeBlogPost},
			{Prefix: "/post/", Type: profile.PageTypeBlogPost},
			{Prefix: "/posts/", Type: profile.PageTypeBlogPost},
			{Prefix: "/product", Type: profile.PageTypeProduct},
			{Prefix: "/service", Type: profile.PageTypeService},
			{Prefix: "/solutions", Type: profile.PageTypeService},
			{Prefix: "/pricing", Type: profile.PageTypePricing},
			{Prefix: "/features", Type: profile.PageTypeFeatures},
			{Prefix: "/case-stud", Type: profile.PageTypeCaseStudy},
			{Prefix: "/success-stories", Type: profile.PageTypeCaseStudy},
			{Prefix: "/our-work", Type: profile.PageTypeCaseStudy},
			{Prefix: "/portfolio", Type: profile.PageTypeCaseStudy},
			{Prefix: "/docs", Type: profile.PageTypeDocumentation},
			{Prefix: "/documentation", Type: profile.PageTypeDocumentation},
			{Prefix: "/developers", Type: profile.PageTypeDocumentation},
			{Prefix: "/api/", Type: profile.PageTypeDocumentation},
			{Prefix: "/faq", Type: profile.PageTypeFAQ},
			{Prefix: "/contact", Type: profile.PageTypeContact},
			{Prefix: "/careers", Type: profile.PageTypeCareers},
			{Prefix: "/privacy", Type: profile.PageTypeLegal},
			{Prefix: "/terms", Type: profile.PageTypeLegal},
			{Prefix: "/legal", Type: profile.PageTypeLegal},
			{Prefix: "/cookie", Type: profile.PageTypeLegal},
			{Prefix: "/disclaimer", Type: profile.PageTypeLegal},
		},
		PracticeAreaKeywords: []string{
			"personal-injury",
			"family-law",
			"criminal-defense",
			"estate-planning",
			"immigration",
			"bankruptcy",
			"medical-malpractice",
			"workers-compensation",
			"car-accident",
			"wrongful-death",
			"real-estate-law",
			"divorce",
			"dui",
		},
		ContentFallback: []ContentRule{
			{Keyword: "frequently asked questions", Type: profile.PageTypeFAQ},
			{Keyword: "faq", Type: profile.PageTypeFAQ},
			{Keyword: "practice areas", Type: profile.PageTypePracticeArea},
			{Keyword: "pricing", Type: profile.PageTypePricing},
			{Keyword: "our plans", Type: profile.PageTypePricing},
			{Keyword: "case study", Type: profile.PageTypeCaseStudy},
			{Keyword: "about us", Type: profile.PageTypeAbout},
			{Keyword: "our story", Type: profile.PageTypeAbout},
			{Keyword: "our mission", Type: profile.PageTypeAbout},
			{Keyword: "meet the team", Type: profile.PageTypeAbout},
			{Keyword: "our services", Type: profile.PageTypeService},
			{Keyword: "what we do", Type: profile.PageTypeService},
			{Keyword: "join our team", Type: profile.PageTypeCareers},
			{Keyword: "careers", Type: profile.PageTypeCareers},
			{Keyword: "contact us", Type: profile.PageTypeContact},
			{Keyword: "get in touch", Type: profile.PageTypeContact},
			{Keyword: "privacy policy", Type: profile.PageTypeLegal},
			{Keyword: "terms of service", Type: profile.PageTypeLegal},
		},
	}
}

// Classify returns the page type for a URL given its title and headings.
func (c *Classifier) Classify(rawURL, title string, headings []string) profile.PageType {
	path := "/"
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = strings.ToLower(u.Path)
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	if t, ok := c.rules.ExactPaths[path]; ok {
		return t
	}
	for _, kw := range c.rules.PracticeAreaKeywords {
		if strings.Contains(path, kw) {
			return profile.PageTypePracticeArea
		}
	}
	for _, rule := range c.rules.PathPrefixes {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule.Type
		}
	}

	haystack := strings.ToLower(path + " " + title + " " + strings.Join(headings, " "))
	for _, rule := range c.rules.ContentFallback {
		if strings.Contains(haystack, rule.Keyword) {
			return rule.Type
		}
	}
	return profile.PageTypeOther
}
