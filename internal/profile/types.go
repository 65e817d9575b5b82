// Package profile defines core types shared across the brand profiling subsystems.
package profile

import (
	"encoding/json"
	"time"
)

// PageType is the taxonomy bucket a crawled page is classified into.
type PageType string

// Known page types. Unrecognized pages fall back to PageTypeOther.
const (
	PageTypeHomepage      PageType = "homepage"
	PageTypeAbout         PageType = "about"
	PageTypeProduct       PageType = "product"
	PageTypeService       PageType = "service"
	PageTypePracticeArea  PageType = "practice_area"
	PageTypePricing       PageType = "pricing"
	PageTypeFeatures      PageType = "features"
	PageTypeBlog          PageType = "blog"
	PageTypeBlogPost      PageType = "blog_post"
	PageTypeCaseStudy     PageType = "case_study"
	PageTypeDocumentation PageType = "documentation"
	PageTypeFAQ           PageType = "faq"
	PageTypeContact       PageType = "contact"
	PageTypeCareers       PageType = "careers"
	PageTypeLegal         PageType = "legal"
	PageTypeOther         PageType = "other"
)

// CrawledPage captures everything extracted from a single fetched page.
// Instances are owned by the crawl engine for the duration of one run and
// never mutated after the run returns.
type CrawledPage struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Type            PageType  `json:"page_type"`
	BodyText        string    `json:"body_text"`
	Headings        []string  `json:"headings"`
	OutboundLinks   []string  `json:"outbound_links"`
	MetaDescription string    `json:"meta_description,omitempty"`
	SnapshotURI     string    `json:"snapshot_uri,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// NavigationItem is one node of the homepage navigation tree.
type NavigationItem struct {
	Label      string           `json:"label"`
	Href       string           `json:"href"`
	IsDropdown bool             `json:"is_dropdown"`
	Children   []NavigationItem `json:"children,omitempty"`
}

// Confidence grades how certain the brand resolver is about a recommended name.
type Confidence string

// Confidence levels, from most to least trustworthy.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BrandInfo holds every brand-name signal collected during a crawl plus the
// derived recommendation. RecommendedName and NameConfidence are recomputed
// whenever a new signal (e.g. the About page) becomes available.
type BrandInfo struct {
	LogoText          string     `json:"logo_text,omitempty"`
	TitleBrandName    string     `json:"title_brand_name,omitempty"`
	OGSiteName        string     `json:"og_site_name,omitempty"`
	SchemaOrgName     string     `json:"schema_org_name,omitempty"`
	FooterCompanyName string     `json:"footer_company_name,omitempty"`
	AboutPageName     string     `json:"about_page_name,omitempty"`
	DomainBasedName   string     `json:"domain_based_name"`
	RecommendedName   string     `json:"recommended_name"`
	NameConfidence    Confidence `json:"name_confidence"`
}

// BlogInfo accumulates blog discovery results during a crawl.
type BlogInfo struct {
	HasBlog    bool     `json:"has_blog"`
	BlogURL    string   `json:"blog_url,omitempty"`
	BlogPosts  []string `json:"blog_posts,omitempty"`
	BlogTopics []string `json:"blog_topics,omitempty"`
}

// ServicesInfo accumulates service and practice-area discovery results.
type ServicesInfo struct {
	Services      []string `json:"services,omitempty"`
	PracticeAreas []string `json:"practice_areas,omitempty"`
	ServiceURLs   []string `json:"service_urls,omitempty"`
}

// AggregatedContent is the reduction of classified pages into the fixed
// topic buckets handed to the summarizer. Each bucket is capped at a
// bucket-specific character budget.
type AggregatedContent struct {
	CompanyInfo         string   `json:"company_info"`
	ProductsAndServices string   `json:"products_and_services"`
	ValuePropositions   string   `json:"value_propositions"`
	TargetAudience      string   `json:"target_audience"`
	BlogTopics          string   `json:"blog_topics"`
	PricingInfo         string   `json:"pricing_info"`
	TeamInfo            string   `json:"team_info"`
	AllHeadings         []string `json:"all_headings"`
	NavigationSummary   string   `json:"navigation_summary"`
}

// CrawlResult is the single immutable output of one crawl run. Ownership
// transfers to the orchestrator on return.
type CrawlResult struct {
	Domain          string            `json:"domain"`
	PagesCrawled    int               `json:"pages_crawled"`
	Pages           []CrawledPage     `json:"pages"`
	SitemapFound    bool              `json:"sitemap_found"`
	CrawlDurationMs int64             `json:"crawl_duration_ms"`
	Aggregated      AggregatedContent `json:"aggregated_content"`
	Navigation      []NavigationItem  `json:"navigation"`
	Brand           BrandInfo         `json:"brand_info"`
	Blog            BlogInfo          `json:"blog_info"`
	Services        ServicesInfo      `json:"services_info"`
}

// OverviewStatus is the lifecycle state of a persisted generation record.
// There is no persisted "pending": a target that was never generated simply
// has no row.
type OverviewStatus string

// Overview status values persisted in the store.
const (
	StatusRunning  OverviewStatus = "running"
	StatusComplete OverviewStatus = "complete"
	StatusFailed   OverviewStatus = "failed"
)

// BrandOverview is the generation record, one row per target. It is created
// on the first generation request and mutated in place by every later run.
type BrandOverview struct {
	ID                string          `json:"id"`
	TargetID          string          `json:"target_id"`
	Status            OverviewStatus  `json:"status"`
	Summary           string          `json:"summary,omitempty"`
	StructuredProfile json.RawMessage `json:"structured_profile,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
	ErrorText         string          `json:"error_text,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// GenerateRequest is what the API layer hands to the orchestrator.
type GenerateRequest struct {
	TargetID  string `json:"target_id"`
	SiteURL   string `json:"site_url"`
	BrandHint string `json:"brand_name,omitempty"`
	Force     bool   `json:"force"`
}
