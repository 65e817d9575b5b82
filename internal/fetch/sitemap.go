package fetch

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// DefaultSitemapPaths is the fixed list of conventional sitemap locations
// tried in order during discovery.
var DefaultSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
	"/sitemap/sitemap.xml",
}

// DiscoverSitemap tries the conventional sitemap paths against the site and
// returns the same-host page URLs of the first sitemap that parses. Nested
// sitemap-index entries (locs pointing at further .xml files) are excluded.
// found reports whether any sitemap was retrieved, even one with no usable
// URLs; the flag changes downstream link-discovery behavior.
func (c *Client) DiscoverSitemap(ctx context.Context, siteURL string) (urls []string, found bool) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, false
	}

	for _, path := range DefaultSitemapPaths {
		candidate := base.Scheme + "://" + base.Host + path
		page, err := c.FetchRaw(ctx, candidate)
		if err != nil {
			continue
		}
		locs, ok := parseSitemapLocs(page.Body)
		if !ok {
			continue
		}
		var out []string
		for _, loc := range locs {
			if !profile.SameHost(siteURL, loc) {
				continue
			}
			if strings.HasSuffix(strings.ToLower(loc), ".xml") {
				continue
			}
			if normalized, err := profile.NormalizeURL(loc); err == nil {
				out = append(out, normalized)
			}
		}
		return out, true
	}
	return nil, false
}

// parseSitemapLocs extracts <loc> texts from a sitemap document. ok is false
// when the body is not parseable XML or carries no urlset/sitemapindex root.
func parseSitemapLocs(body []byte) ([]string, bool) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}
	root := xmlquery.FindOne(doc, "//*[local-name()='urlset' or local-name()='sitemapindex']")
	if root == nil {
		return nil, false
	}
	var locs []string
	for _, node := range xmlquery.Find(doc, "//*[local-name()='loc']") {
		if text := strings.TrimSpace(node.InnerText()); text != "" {
			locs = append(locs, text)
		}
	}
	return locs, true
}
