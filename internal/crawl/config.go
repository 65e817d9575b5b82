package crawl

import "time"

// Config holds the settings for a crawl run. The priority and keyword tables
// are immutable configuration data injected at construction so deployments
// can tune them and tests can isolate them.
type Config struct {
	MaxPages            int
	BatchSize           int
	BatchDelay          time.Duration
	FetchTimeout        time.Duration
	MaxBodyChars        int
	MaxHeadingsPerPage  int
	MaxBlogTopics       int
	SnapshotPrefix      string
	SnapshotContentType string
	PathPriorities      map[string]int
	DefaultPriority     int
	BlogKeywords        []string
	ServiceKeywords     []string
}

// DefaultConfig returns the stock crawl settings.
func DefaultConfig() Config {
	return Config{
		MaxPages:            50,
		BatchSize:           5,
		BatchDelay:          300 * time.Millisecond,
		FetchTimeout:        15 * time.Second,
		MaxBodyChars:        5000,
		MaxHeadingsPerPage:  30,
		MaxBlogTopics:       20,
		SnapshotPrefix:      "pages",
		SnapshotContentType: "text/html; charset=utf-8",
		PathPriorities: map[string]int{
			"/":               1,
			"/about":          2,
			"/services":       3,
			"/products":       3,
			"/practice-areas": 3,
			"/features":       4,
			"/pricing":        5,
			"/blog":           6,
			"/case-studies":   7,
			"/faq":            8,
			"/contact":        9,
			"/careers":        10,
		},
		DefaultPriority: 100,
		BlogKeywords:    []string{"blog", "news", "articles", "insights", "resources"},
		ServiceKeywords: []string{"services", "practice areas", "what we do", "solutions", "products"},
	}
}

// normalized fills zero values with defaults so a partially populated Config
// still behaves sanely.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxPages <= 0 {
		c.MaxPages = def.MaxPages
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = def.BatchDelay
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.MaxBodyChars <= 0 {
		c.MaxBodyChars = def.MaxBodyChars
	}
	if c.MaxHeadingsPerPage <= 0 {
		c.MaxHeadingsPerPage = def.MaxHeadingsPerPage
	}
	if c.MaxBlogTopics <= 0 {
		c.MaxBlogTopics = def.MaxBlogTopics
	}
	if c.SnapshotPrefix == "" {
		c.SnapshotPrefix = def.SnapshotPrefix
	}
	if c.SnapshotContentType == "" {
		c.SnapshotContentType = def.SnapshotContentType
	}
	if c.PathPriorities == nil {
		c.PathPriorities = def.PathPriorities
	}
	if c.DefaultPriority <= 0 {
		c.DefaultPriority = def.DefaultPriority
	}
	if c.BlogKeywords == nil {
		c.BlogKeywords = def.BlogKeywords
	}
	if c.ServiceKeywords == nil {
		c.ServiceKeywords = def.ServiceKeywords
	}
	return c
}
