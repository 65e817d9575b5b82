// Package htmlparse extracts structure from fetched HTML: title, headings,
// body text, outbound links, the navigation tree, and brand-name signals.
// Parsing is backed by goquery; every accessor degrades to an empty value on
// malformed markup rather than failing.
package htmlparse

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/brandworks/siteprofiler/internal/profile"
)

const maxNavListDepth = 4

var (
	whitespace = regexp.MustCompile(`\s+`)

	skippedExtensions = map[string]struct{}{
		".pdf": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
		".webp": {}, ".ico": {}, ".css": {}, ".js": {}, ".zip": {}, ".mp4": {},
		".mp3": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".xml": {},
	}
)

// Document wraps a parsed page and the URL it was fetched from.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse builds a Document from raw HTML. baseURL is used to resolve
// relative links.
func Parse(baseURL string, body []byte) (*Document, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc, base: base}, nil
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return clean(d.doc.Find("title").First().Text())
}

// MetaDescription returns the content of the description meta tag.
func (d *Document) MetaDescription() string {
	desc, _ := d.doc.Find(`meta[name="description"]`).First().Attr("content")
	return clean(desc)
}

// Headings returns h1-h3 texts in document order, capped at max.
func (d *Document) Headings(max int) []string {
	var out []string
	d.doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := clean(s.Text()); text != "" {
			out = append(out, text)
		}
		return max <= 0 || len(out) < max
	})
	return out
}

// BodyText returns the page's visible text with scripts, styles and chrome
// (nav/header/footer) removed, collapsed whitespace, truncated to maxChars.
func (d *Document) BodyText(maxChars int) string {
	body := d.doc.Find("body").Clone()
	body.Find("script, style, noscript, svg, iframe, nav, header, footer").Remove()
	text := clean(body.Text())
	if maxChars > 0 && len(text) > maxChars {
		// Back the cut off to a rune boundary so the cap never splits a
		// multi-byte character.
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

// OutboundLinks returns same-host page links, normalized (no query or
// fragment) and deduplicated, in document order. Asset and non-HTTP links
// are skipped.
func (d *Document) OutboundLinks() []string {
	seen := make(map[string]struct{})
	var out []string
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link := d.resolveLink(href)
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		out = append(out, link)
	})
	return out
}

func (d *Document) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := d.base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if !profile.SameHost(d.base.String(), abs.String()) {
		return ""
	}
	if ext := strings.ToLower(pathExtension(abs.Path)); ext != "" {
		if _, skip := skippedExtensions[ext]; skip {
			return ""
		}
	}
	normalized, err := profile.NormalizeURL(abs.String())
	if err != nil {
		return ""
	}
	return normalized
}

// Navigation builds the navigation tree from the page's primary nav markup.
// It prefers a <nav> element, then <header>, and walks nested lists to a
// bounded depth.
func (d *Document) Navigation() []profile.NavigationItem {
	root := d.doc.Find("nav").First()
	if root.Length() == 0 {
		root = d.doc.Find("header").First()
	}
	if root.Length() == 0 {
		return nil
	}

	list := root.Find("ul").First()
	if list.Length() == 0 {
		// Flat navs without list markup still carry useful anchors.
		var items []profile.NavigationItem
		root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			label := clean(a.Text())
			href, _ := a.Attr("href")
			if label != "" && strings.TrimSpace(href) != "" {
				items = append(items, profile.NavigationItem{Label: label, Href: href})
			}
		})
		return items
	}
	return navFromList(list, 0)
}

func navFromList(list *goquery.Selection, depth int) []profile.NavigationItem {
	if depth > maxNavListDepth {
		return nil
	}
	var items []profile.NavigationItem
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		// A descendant search would grab the sub-list's first anchor on
		// dropdown items, so only look past direct children when the item
		// has no nested list.
		anchor := li.ChildrenFiltered("a").First()
		if anchor.Length() == 0 && li.Find("ul").Length() == 0 {
			anchor = li.Find("a").First()
		}
		label := clean(anchor.Text())
		href, _ := anchor.Attr("href")
		if label == "" {
			// Dropdown toggles are often spans or buttons.
			label = clean(li.ChildrenFiltered("span, button").First().Text())
		}

		var children []profile.NavigationItem
		if sub := li.ChildrenFiltered("ul").First(); sub.Length() > 0 {
			children = navFromList(sub, depth+1)
		} else if sub := li.Find("ul").First(); sub.Length() > 0 {
			children = navFromList(sub, depth+1)
		}

		if label == "" && len(children) == 0 {
			return
		}
		items = append(items, profile.NavigationItem{
			Label:      label,
			Href:       strings.TrimSpace(href),
			IsDropdown: len(children) > 0,
			Children:   children,
		})
	})
	return items
}

func pathExtension(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 && i > strings.LastIndex(path, "/") {
		return path[i:]
	}
	return ""
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
