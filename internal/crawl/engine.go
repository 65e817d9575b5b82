// Package crawl implements the site crawling engine: frontier management,
// batched concurrent fetching, link discovery, and per-run extraction of
// brand, blog, and service information.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/brandworks/siteprofiler/internal/aggregate"
	"github.com/brandworks/siteprofiler/internal/brand"
	"github.com/brandworks/siteprofiler/internal/classify"
	"github.com/brandworks/siteprofiler/internal/fetch"
	"github.com/brandworks/siteprofiler/internal/htmlparse"
	"github.com/brandworks/siteprofiler/internal/profile"
)

// Fetcher is the transport boundary the engine crawls through.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (fetch.Page, error)
	DiscoverSitemap(ctx context.Context, siteURL string) (urls []string, found bool)
}

var titleSegment = regexp.MustCompile(`\s*[|–—:]\s*|\s+-\s+`)

// Engine crawls one site per call. All crawl state is local to a run, so a
// single Engine may serve concurrent runs for different targets.
type Engine struct {
	fetcher    Fetcher
	classifier *classify.Classifier
	aggregator *aggregate.Aggregator
	blobs      profile.BlobStore
	hasher     profile.Hasher
	clock      profile.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs an Engine. blobs may be nil to disable raw page snapshots.
func New(
	fetcher Fetcher,
	classifier *classify.Classifier,
	aggregator *aggregate.Aggregator,
	blobs profile.BlobStore,
	hasher profile.Hasher,
	clock profile.Clock,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fetcher:    fetcher,
		classifier: classifier,
		aggregator: aggregator,
		blobs:      blobs,
		hasher:     hasher,
		clock:      clock,
		cfg:        cfg.normalized(),
		logger:     logger,
	}
}

// Crawl walks the site rooted at siteURL and returns the crawl result.
// Per-page failures are absorbed; only an unreachable homepage fails the run.
func (e *Engine) Crawl(ctx context.Context, siteURL, brandHint string) (profile.CrawlResult, error) {
	start := time.Now()

	home, err := profile.NormalizeURL(siteURL)
	if err != nil {
		return profile.CrawlResult{}, fmt.Errorf("normalize site url: %w", err)
	}

	// The homepage is fetched first and synchronously: it seeds navigation
	// and the brand-signal set, and is recorded even if later steps fail.
	raw, doc, err := e.fetchAndParse(ctx, home)
	if err != nil {
		return profile.CrawlResult{}, fmt.Errorf("fetch homepage: %w", err)
	}

	nav := doc.Navigation()
	info := e.brandSignals(doc, siteURL)
	pages := []profile.CrawledPage{e.buildPage(ctx, home, raw, doc)}

	fr := newFrontier()
	fr.markSeen(home)
	if finalURL, err := profile.NormalizeURL(raw.URL); err == nil {
		fr.markSeen(finalURL)
	}

	sitemapURLs, sitemapFound := e.fetcher.DiscoverSitemap(ctx, home)
	useSitemap := sitemapFound && len(sitemapURLs) > 0

	for _, u := range profile.NavigationURLs(nav, raw.URL) {
		if normalized, err := profile.NormalizeURL(u); err == nil && !fr.seen(normalized) {
			fr.add(normalized, e.rank(normalized))
		}
	}
	seeds := pages[0].OutboundLinks
	if useSitemap {
		seeds = sitemapURLs
	}
	for _, u := range seeds {
		if !fr.seen(u) {
			fr.add(u, e.rank(u))
		}
	}
	fr.sortByRank()
	fr.truncate(e.cfg.MaxPages - len(pages))

	blogInfo := e.detectEntryPoints(nav, fr, raw.URL)
	fr.sortByRank()

	// Without a usable sitemap, fall back to breadth-first expansion over
	// each fetched page's outbound links.
	pages = e.drain(ctx, fr, pages, !useSitemap)

	for i := range pages {
		pages[i].Type = e.classifier.Classify(pages[i].URL, pages[i].Title, pages[i].Headings)
	}

	host := hostOf(siteURL)
	info.RecommendedName, info.NameConfidence = brand.SelectBestName(info, host)
	if info.NameConfidence != profile.ConfidenceHigh {
		e.promoteFromAboutPages(&info, pages, host)
	}
	if brandHint != "" {
		// An operator-supplied name outranks every crawled signal.
		info.RecommendedName = brandHint
		info.NameConfidence = profile.ConfidenceHigh
	}

	e.extractBlogContent(&blogInfo, pages)
	services := e.extractServices(pages)

	return profile.CrawlResult{
		Domain:          host,
		PagesCrawled:    len(pages),
		Pages:           pages,
		SitemapFound:    sitemapFound,
		CrawlDurationMs: time.Since(start).Milliseconds(),
		Aggregated:      e.aggregator.Reduce(pages, nav),
		Navigation:      nav,
		Brand:           info,
		Blog:            blogInfo,
		Services:        services,
	}, nil
}

// EmptyResult builds a well-formed zero-page result for a site, used by the
// orchestrator when the crawl step itself fails.
func EmptyResult(siteURL string) profile.CrawlResult {
	name := profile.DomainName(siteURL)
	return profile.CrawlResult{
		Domain: hostOf(siteURL),
		Brand: profile.BrandInfo{
			DomainBasedName: name,
			RecommendedName: name,
			NameConfidence:  profile.ConfidenceLow,
		},
	}
}

// drain consumes the frontier in fixed-size concurrent batches with a fixed
// inter-batch delay. A failed fetch drops that URL without aborting the
// batch or the run.
func (e *Engine) drain(ctx context.Context, fr *frontier, pages []profile.CrawledPage, discover bool) []profile.CrawledPage {
	limiter := rate.NewLimiter(rate.Every(e.cfg.BatchDelay), 1)

	for !fr.empty() && len(pages) < e.cfg.MaxPages {
		if err := limiter.Wait(ctx); err != nil {
			e.logger.Debug("crawl interrupted", zap.Error(err))
			break
		}

		batch := fr.popBatch(e.cfg.BatchSize)
		for _, page := range e.fetchBatch(ctx, batch) {
			if len(pages) >= e.cfg.MaxPages {
				break
			}
			pages = append(pages, page)
			if !discover {
				continue
			}
			for _, link := range page.OutboundLinks {
				if !fr.seen(link) {
					fr.add(link, e.rank(link))
				}
			}
		}
		if discover {
			fr.sortByRank()
		}
	}
	return pages
}

// fetchBatch fetches a batch of URLs concurrently. Completion order is
// unspecified; failures are logged and dropped.
func (e *Engine) fetchBatch(ctx context.Context, urls []string) []profile.CrawledPage {
	var (
		mu    sync.Mutex
		pages []profile.CrawledPage
		wg    sync.WaitGroup
	)
	for _, u := range urls {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			raw, doc, err := e.fetchAndParse(ctx, pageURL)
			if err != nil {
				e.logger.Debug("page fetch failed", zap.String("url", pageURL), zap.Error(err))
				return
			}
			page := e.buildPage(ctx, pageURL, raw, doc)
			mu.Lock()
			pages = append(pages, page)
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return pages
}

func (e *Engine) fetchAndParse(ctx context.Context, pageURL string) (fetch.Page, *htmlparse.Document, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	raw, err := e.fetcher.FetchPage(fetchCtx, pageURL)
	if err != nil {
		return fetch.Page{}, nil, err
	}
	doc, err := htmlparse.Parse(raw.URL, raw.Body)
	if err != nil {
		return fetch.Page{}, nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return raw, doc, nil
}

// buildPage assembles a CrawledPage and, when a blob store is configured,
// stores the raw HTML snapshot. Snapshot failures never fail the page.
func (e *Engine) buildPage(ctx context.Context, pageURL string, raw fetch.Page, doc *htmlparse.Document) profile.CrawledPage {
	page := profile.CrawledPage{
		URL:             pageURL,
		Title:           doc.Title(),
		BodyText:        doc.BodyText(e.cfg.MaxBodyChars),
		Headings:        doc.Headings(e.cfg.MaxHeadingsPerPage),
		OutboundLinks:   doc.OutboundLinks(),
		MetaDescription: doc.MetaDescription(),
		FetchedAt:       e.clock.Now(),
	}

	if e.blobs != nil && e.hasher != nil {
		hash, err := e.hasher.Hash(raw.Body)
		if err == nil {
			path := fmt.Sprintf("%s/%s/%s.html", strings.Trim(e.cfg.SnapshotPrefix, "/"), hostOf(pageURL), hash)
			uri, putErr := e.blobs.PutObject(ctx, path, e.cfg.SnapshotContentType, raw.Body)
			if putErr != nil {
				e.logger.Warn("snapshot store failed", zap.String("url", pageURL), zap.Error(putErr))
			} else {
				page.SnapshotURI = uri
			}
		}
	}
	return page
}

func (e *Engine) brandSignals(doc *htmlparse.Document, siteURL string) profile.BrandInfo {
	return profile.BrandInfo{
		LogoText:          doc.LogoText(),
		TitleBrandName:    doc.Title(),
		OGSiteName:        doc.OGSiteName(),
		SchemaOrgName:     doc.SchemaOrgName(),
		FooterCompanyName: doc.FooterCompanyName(),
		DomainBasedName:   profile.DomainName(siteURL),
	}
}

// promoteFromAboutPages searches already-fetched about pages for a name and
// promotes confidence to high on a hit.
func (e *Engine) promoteFromAboutPages(info *profile.BrandInfo, pages []profile.CrawledPage, host string) {
	for _, page := range pages {
		if page.Type != profile.PageTypeAbout {
			continue
		}
		name := brand.ExtractAboutName(page.BodyText)
		if name == "" {
			continue
		}
		info.AboutPageName = name
		info.RecommendedName, _ = brand.SelectBestName(*info, host)
		info.NameConfidence = profile.ConfidenceHigh
		return
	}
}

// detectEntryPoints scans navigation labels for blog and service keywords,
// falling back to URL patterns over the frontier, and moves any hits to the
// front of the queue.
func (e *Engine) detectEntryPoints(nav []profile.NavigationItem, fr *frontier, base string) profile.BlogInfo {
	var blogInfo profile.BlogInfo

	blogURL := e.findNavMatch(nav, base, e.cfg.BlogKeywords)
	serviceURL := e.findNavMatch(nav, base, e.cfg.ServiceKeywords)

	if blogURL == "" {
		blogURL = e.findFrontierMatch(fr, e.cfg.BlogKeywords)
	}
	if serviceURL == "" {
		serviceURL = e.findFrontierMatch(fr, e.cfg.ServiceKeywords)
	}

	if blogURL != "" {
		blogInfo.HasBlog = true
		blogInfo.BlogURL = blogURL
		fr.promote(blogURL)
	}
	if serviceURL != "" {
		fr.promote(serviceURL)
	}
	return blogInfo
}

func (e *Engine) findNavMatch(nav []profile.NavigationItem, base string, keywords []string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	stack := make([]profile.NavigationItem, len(nav))
	copy(stack, nav)
	for len(stack) > 0 {
		item := stack[0]
		stack = append(stack[1:], item.Children...)

		label := strings.ToLower(strings.TrimSpace(item.Label))
		if label == "" || item.Href == "" || item.Href == "#" {
			continue
		}
		for _, kw := range keywords {
			if !strings.Contains(label, kw) {
				continue
			}
			ref, err := url.Parse(item.Href)
			if err != nil {
				continue
			}
			abs := baseURL.ResolveReference(ref).String()
			if !profile.SameHost(base, abs) {
				continue
			}
			if normalized, err := profile.NormalizeURL(abs); err == nil {
				return normalized
			}
		}
	}
	return ""
}

func (e *Engine) findFrontierMatch(fr *frontier, keywords []string) string {
	for _, item := range fr.items {
		u, err := url.Parse(item.url)
		if err != nil {
			continue
		}
		path := strings.ToLower(u.Path)
		for _, kw := range keywords {
			slug := strings.ReplaceAll(kw, " ", "-")
			if path == "/"+slug || strings.HasPrefix(path, "/"+slug+"/") {
				return item.url
			}
		}
	}
	return ""
}

// extractBlogContent pulls post titles and topics from blog-typed pages.
// Topic order follows batch-completion order and is not deterministic.
func (e *Engine) extractBlogContent(info *profile.BlogInfo, pages []profile.CrawledPage) {
	for _, page := range pages {
		switch page.Type {
		case profile.PageTypeBlog:
			info.HasBlog = true
			if info.BlogURL == "" {
				info.BlogURL = page.URL
			}
		case profile.PageTypeBlogPost:
			info.HasBlog = true
			if title := leadingTitleSegment(page.Title); title != "" {
				info.BlogPosts = append(info.BlogPosts, title)
			}
		default:
			continue
		}
		// The topic cap only stops heading collection; later blog pages still
		// contribute post titles.
		for _, h := range page.Headings {
			if len(info.BlogTopics) >= e.cfg.MaxBlogTopics {
				break
			}
			info.BlogTopics = append(info.BlogTopics, h)
		}
	}
}

// extractServices pulls service and practice-area names from service-typed
// pages' titles and first headings.
func (e *Engine) extractServices(pages []profile.CrawledPage) profile.ServicesInfo {
	var info profile.ServicesInfo
	for _, page := range pages {
		if page.Type != profile.PageTypeService && page.Type != profile.PageTypePracticeArea {
			continue
		}
		name := leadingTitleSegment(page.Title)
		if name == "" && len(page.Headings) > 0 {
			name = page.Headings[0]
		}
		if name == "" {
			continue
		}
		if page.Type == profile.PageTypePracticeArea {
			info.PracticeAreas = append(info.PracticeAreas, name)
		} else {
			info.Services = append(info.Services, name)
		}
		info.ServiceURLs = append(info.ServiceURLs, page.URL)
	}
	return info
}

// rank assigns a priority from the path-prefix table; unmatched paths get
// the default rank. The longest matching prefix wins.
func (e *Engine) rank(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return e.cfg.DefaultPriority
	}
	path := strings.ToLower(u.Path)
	if path == "" || path == "/" {
		if p, ok := e.cfg.PathPriorities["/"]; ok {
			return p
		}
		return e.cfg.DefaultPriority
	}

	best := e.cfg.DefaultPriority
	bestLen := 0
	for prefix, priority := range e.cfg.PathPriorities {
		if prefix == "/" {
			continue
		}
		if strings.HasPrefix(path, prefix) && len(prefix) > bestLen {
			best = priority
			bestLen = len(prefix)
		}
	}
	return best
}

func leadingTitleSegment(title string) string {
	parts := titleSegment.Split(strings.TrimSpace(title), -1)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
