package htmlparse

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Schema.org types whose "name" we accept as an organization name.
var organizationTypes = map[string]struct{}{
	"organization":        {},
	"localbusiness":       {},
	"corporation":         {},
	"legalservice":        {},
	"professionalservice": {},
	"attorney":            {},
	"medicalorganization": {},
	"store":               {},
}

// OGSiteName returns the Open Graph site name, if declared.
func (d *Document) OGSiteName() string {
	content, _ := d.doc.Find(`meta[property="og:site_name"]`).First().Attr("content")
	return clean(content)
}

// SchemaOrgName scans JSON-LD blocks for an organization-typed "name".
// Malformed JSON-LD is skipped silently.
func (d *Document) SchemaOrgName() string {
	var name string
	d.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name = organizationNameFromJSONLD([]byte(s.Text()))
		return name == ""
	})
	return name
}

func organizationNameFromJSONLD(raw []byte) string {
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return ""
	}
	return organizationNameFromNode(node)
}

func organizationNameFromNode(node any) string {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if name := organizationNameFromNode(item); name != "" {
				return name
			}
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			if name := organizationNameFromNode(graph); name != "" {
				return name
			}
		}
		if isOrganizationType(v["@type"]) {
			if name, ok := v["name"].(string); ok {
				return clean(name)
			}
		}
	}
	return ""
}

func isOrganizationType(t any) bool {
	switch v := t.(type) {
	case string:
		_, ok := organizationTypes[strings.ToLower(v)]
		return ok
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if _, hit := organizationTypes[strings.ToLower(s)]; hit {
					return true
				}
			}
		}
	}
	return false
}

// LogoText returns the alt text of the most likely logo image: an image
// inside the header/nav, or any image whose class or src mentions "logo".
func (d *Document) LogoText() string {
	selectors := []string{
		`header img[alt]`,
		`nav img[alt]`,
		`img[class*="logo"][alt]`,
		`a[class*="logo"] img[alt]`,
		`img[src*="logo"][alt]`,
	}
	for _, sel := range selectors {
		alt, _ := d.doc.Find(sel).First().Attr("alt")
		if alt = clean(alt); alt != "" {
			return alt
		}
	}
	return ""
}

// FooterCompanyName returns the footer line most likely to carry the
// company name: the copyright line when present, else the first short
// paragraph of the footer.
func (d *Document) FooterCompanyName() string {
	footer := d.doc.Find("footer").First()
	if footer.Length() == 0 {
		return ""
	}

	var copyright string
	footer.Find("p, span, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := clean(s.Text())
		if text == "" || len(text) > 200 {
			return true
		}
		lower := strings.ToLower(text)
		if strings.Contains(text, "©") || strings.Contains(lower, "copyright") {
			copyright = text
			return false
		}
		return true
	})
	if copyright != "" {
		return copyright
	}

	first := clean(footer.Find("p").First().Text())
	if len(first) > 120 {
		return ""
	}
	return first
}
