package crawl

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brandworks/siteprofiler/internal/aggregate"
	"github.com/brandworks/siteprofiler/internal/classify"
	clocksystem "github.com/brandworks/siteprofiler/internal/clock/system"
	"github.com/brandworks/siteprofiler/internal/fetch"
	"github.com/brandworks/siteprofiler/internal/profile"
)

const site = "https://acme.test"

// stubFetcher serves canned pages keyed by normalized URL and records every
// fetch, so tests can assert exactly what the engine requested.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]fetch.Page
	sitemap []string
	found   bool
	fetched []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{pages: make(map[string]fetch.Page)}
}

func (s *stubFetcher) addPage(url, html string) {
	s.pages[url] = fetch.Page{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}
}

func (s *stubFetcher) FetchPage(_ context.Context, url string) (fetch.Page, error) {
	s.mu.Lock()
	s.fetched = append(s.fetched, url)
	s.mu.Unlock()
	page, ok := s.pages[url]
	if !ok {
		return fetch.Page{}, fetch.ErrNoPage
	}
	return page, nil
}

func (s *stubFetcher) DiscoverSitemap(context.Context, string) ([]string, bool) {
	return s.sitemap, s.found
}

func (s *stubFetcher) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.fetched {
		if u == url {
			n++
		}
	}
	return n
}

func newTestEngine(f Fetcher, cfg Config) *Engine {
	if cfg.BatchDelay == 0 {
		cfg.BatchDelay = time.Millisecond
	}
	return New(
		f,
		classify.NewDefault(),
		aggregate.New(aggregate.DefaultCaps()),
		nil,
		nil,
		clocksystem.New(),
		cfg,
		zap.NewNop(),
	)
}

func pageHTML(title, heading string, links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>" + title + "</title></head><body>")
	b.WriteString("<h1>" + heading + "</h1><p>Some body text.</p>")
	for _, l := range links {
		b.WriteString(`<a href="` + l + `">` + l + `</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestCrawlHomepageFailure(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(newStubFetcher(), Config{})

	_, err := engine.Crawl(context.Background(), site, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch homepage")
}

func TestCrawlWithSitemap(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/about", site + "/pricing"}
	f.addPage(site+"/", pageHTML("Acme Widgets", "Widgets", "/contact"))
	f.addPage(site+"/about", pageHTML("About | Acme Widgets", "Our Story"))
	f.addPage(site+"/pricing", pageHTML("Pricing | Acme Widgets", "Plans"))
	f.addPage(site+"/contact", pageHTML("Contact | Acme Widgets", "Reach Us"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.True(t, result.SitemapFound)
	assert.Equal(t, "acme.test", result.Domain)
	assert.Equal(t, 3, result.PagesCrawled)

	types := make(map[string]profile.PageType)
	for _, p := range result.Pages {
		types[p.URL] = p.Type
	}
	assert.Equal(t, profile.PageTypeHomepage, types[site+"/"])
	assert.Equal(t, profile.PageTypeAbout, types[site+"/about"])
	assert.Equal(t, profile.PageTypePricing, types[site+"/pricing"])

	// Sitemap mode crawls the sitemap's URLs; outbound links are not followed.
	assert.Equal(t, 0, f.fetchCount(site+"/contact"))
}

func TestCrawlFallbackDiscovery(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.addPage(site+"/", pageHTML("Acme", "Welcome", "/about", "/pricing"))
	f.addPage(site+"/about", pageHTML("About", "Story", "/team"))
	f.addPage(site+"/pricing", pageHTML("Pricing", "Plans"))
	f.addPage(site+"/team", pageHTML("Team", "People"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.False(t, result.SitemapFound)
	assert.Equal(t, 4, result.PagesCrawled)
	assert.Equal(t, 1, f.fetchCount(site+"/team"))
}

func TestCrawlEmptySitemapFallsBackToDiscovery(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	// The sitemap exists but lists no usable URLs; the crawl still reports it
	// and falls back to following outbound links.
	f.found = true
	f.addPage(site+"/", pageHTML("Acme", "Welcome", "/about"))
	f.addPage(site+"/about", pageHTML("About", "Story", "/team"))
	f.addPage(site+"/team", pageHTML("Team", "People"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.True(t, result.SitemapFound)
	assert.Equal(t, 3, result.PagesCrawled)
	// /team is reachable only through /about's links, so discovery mode ran.
	assert.Equal(t, 1, f.fetchCount(site+"/team"))
}

func TestCrawlRespectsMaxPages(t *testing.T) {
	t.Parallel()

	links := []string{"/p1", "/p2", "/p3", "/p4", "/p5", "/p6"}
	f := newStubFetcher()
	f.addPage(site+"/", pageHTML("Acme", "Welcome", links...))
	for _, l := range links {
		f.addPage(site+l, pageHTML("Page", "Heading"))
	}

	result, err := newTestEngine(f, Config{MaxPages: 3}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.PagesCrawled)
	assert.Len(t, result.Pages, 3)
}

func TestCrawlAbsorbsPageFailures(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/about", site + "/gone", site + "/pricing", site + "/also-gone"}
	f.addPage(site+"/", pageHTML("Acme", "Welcome"))
	f.addPage(site+"/about", pageHTML("About", "Story"))
	f.addPage(site+"/pricing", pageHTML("Pricing", "Plans"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.PagesCrawled)
}

func TestCrawlFetchesEachURLOnce(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.addPage(site+"/", pageHTML("Acme", "Welcome", "/about"))
	f.addPage(site+"/about", pageHTML("About", "Story", "/", "/about", "/team"))
	f.addPage(site+"/team", pageHTML("Team", "People", "/about"))

	_, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	for _, u := range []string{site + "/", site + "/about", site + "/team"} {
		assert.Equal(t, 1, f.fetchCount(u), u)
	}
}

func TestCrawlBrandFromStructuredData(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.addPage(site+"/", `<html><head>
		<title>Home</title>
		<script type="application/ld+json">{"@type":"Organization","name":"Acme Widgets"}</script>
	</head><body><h1>Welcome</h1></body></html>`)

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.Equal(t, "Acme Widgets", result.Brand.RecommendedName)
	assert.Equal(t, profile.ConfidenceHigh, result.Brand.NameConfidence)
	assert.Equal(t, "acme", result.Brand.DomainBasedName)
}

func TestCrawlBrandHintOverridesSignals(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.addPage(site+"/", `<html><head>
		<script type="application/ld+json">{"@type":"Organization","name":"Acme Widgets"}</script>
	</head><body></body></html>`)

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "Custom Brand Co")
	require.NoError(t, err)

	assert.Equal(t, "Custom Brand Co", result.Brand.RecommendedName)
	assert.Equal(t, profile.ConfidenceHigh, result.Brand.NameConfidence)
}

func TestCrawlPromotesAboutPageName(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/about"}
	// No usable homepage signals: the title is just the domain dressed up.
	f.addPage(site+"/", pageHTML("acme.test", "Welcome"))
	f.addPage(site+"/about", `<html><head><title>acme.test</title></head><body>
		<p>Acme Widgets is a leading maker of widgets for builders.</p>
	</body></html>`)

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.Equal(t, "Acme Widgets", result.Brand.AboutPageName)
	assert.Equal(t, "Acme Widgets", result.Brand.RecommendedName)
	assert.Equal(t, profile.ConfidenceHigh, result.Brand.NameConfidence)
}

func TestCrawlDetectsBlog(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.addPage(site+"/", `<html><head><title>Acme</title></head><body>
		<nav><ul>
			<li><a href="/blog">Blog</a></li>
			<li><a href="/about">About</a></li>
		</ul></nav>
	</body></html>`)
	f.addPage(site+"/blog", pageHTML("Blog | Acme", "Widget Maintenance Tips"))
	f.addPage(site+"/about", pageHTML("About | Acme", "Our Story"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.True(t, result.Blog.HasBlog)
	assert.Equal(t, site+"/blog", result.Blog.BlogURL)
	assert.Contains(t, result.Blog.BlogTopics, "Widget Maintenance Tips")
}

func TestCrawlCollectsBlogPosts(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/blog", site + "/blog/widget-care"}
	f.addPage(site+"/", pageHTML("Acme", "Welcome"))
	f.addPage(site+"/blog", pageHTML("Blog | Acme", "Latest Posts"))
	f.addPage(site+"/blog/widget-care", pageHTML("Widget Care 101 | Acme", "Widget Care 101"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.True(t, result.Blog.HasBlog)
	assert.Contains(t, result.Blog.BlogPosts, "Widget Care 101")
}

func TestCrawlBlogTopicCapKeepsCollectingPosts(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/blog", site + "/blog/first-post", site + "/blog/second-post"}
	f.addPage(site+"/", pageHTML("Acme", "Welcome"))
	f.addPage(site+"/blog", `<html><head><title>Blog | Acme</title></head><body>
		<h2>Widget Care</h2><h2>Widget Repair</h2><h2>Widget History</h2>
	</body></html>`)
	f.addPage(site+"/blog/first-post", pageHTML("First Post | Acme", "First Post"))
	f.addPage(site+"/blog/second-post", pageHTML("Second Post | Acme", "Second Post"))

	result, err := newTestEngine(f, Config{MaxBlogTopics: 2}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	// The cap bounds topics, not post collection on later blog pages.
	assert.Len(t, result.Blog.BlogTopics, 2)
	assert.Contains(t, result.Blog.BlogPosts, "First Post")
	assert.Contains(t, result.Blog.BlogPosts, "Second Post")
}

func TestCrawlExtractsServices(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/services/consulting", site + "/practice-areas/family-law"}
	f.addPage(site+"/", pageHTML("Acme", "Welcome"))
	f.addPage(site+"/services/consulting", pageHTML("Consulting | Acme", "Consulting"))
	f.addPage(site+"/practice-areas/family-law", pageHTML("Family Law | Acme", "Family Law"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.Contains(t, result.Services.Services, "Consulting")
	assert.Contains(t, result.Services.PracticeAreas, "Family Law")
	assert.Len(t, result.Services.ServiceURLs, 2)
}

func TestCrawlAggregatesContent(t *testing.T) {
	t.Parallel()

	f := newStubFetcher()
	f.found = true
	f.sitemap = []string{site + "/about"}
	f.addPage(site+"/", pageHTML("Acme Widgets", "Widgets for Everyone"))
	f.addPage(site+"/about", pageHTML("About | Acme Widgets", "Our Mission"))

	result, err := newTestEngine(f, Config{}).Crawl(context.Background(), site, "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Aggregated.CompanyInfo)
	assert.Contains(t, result.Aggregated.AllHeadings, "Widgets for Everyone")
	assert.Greater(t, result.CrawlDurationMs, int64(-1))
}

func TestEmptyResult(t *testing.T) {
	t.Parallel()

	result := EmptyResult("https://www.acme.test/somewhere")

	assert.Equal(t, "www.acme.test", result.Domain)
	assert.Equal(t, 0, result.PagesCrawled)
	assert.Empty(t, result.Pages)
	assert.Equal(t, "acme", result.Brand.RecommendedName)
	assert.Equal(t, profile.ConfidenceLow, result.Brand.NameConfidence)
}
