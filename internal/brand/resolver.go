// Package brand derives a canonical brand name from the weak, conflicting
// signals a crawl collects. Every step is best-effort: the resolver always
// returns something, preferring partial correctness over failure.
package brand

import (
	"regexp"
	"strings"

	"github.com/brandworks/siteprofiler/internal/profile"
)

var (
	legalSuffixes = []string{
		"inc.", "inc", "llc", "llp", "pllc", "ltd.", "ltd", "corp.", "corp",
		"co.", "gmbh", "plc", "s.a.", "pty",
	}
	genericSuffixWords = []string{"law", "legal", "group", "firm", "company", "agency", "studio"}

	nonLetters     = regexp.MustCompile(`[^a-z]+`)
	copyrightLead  = regexp.MustCompile(`(?i)^(©|\(c\)|copyright)\s*`)
	yearSpan       = regexp.MustCompile(`\b(19|20)\d{2}(\s*[-–]\s*(19|20)\d{2})?\b`)
	rightsReserved = regexp.MustCompile(`(?i)[.,]?\s*all rights reserved\.?$`)
	titleSeparator = regexp.MustCompile(`\s*[|–—:]\s*|\s+-\s+`)

	// The captures demand capitalized words, so only the lead phrase is
	// case-flexible.
	aboutPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[Aa]bout\s+((?:[A-Z][\w&'.-]*\s*){1,5})`),
		regexp.MustCompile(`\b((?:[A-Z][\w&'.-]*\s*){1,5})\s*is a leading\b`),
		regexp.MustCompile(`\b[Ww]elcome to\s+((?:[A-Z][\w&'.-]*\s*){1,5})`),
	}
)

// SelectBestName picks the most trustworthy brand name from the collected
// signals. host is the crawl target's hostname (e.g. "acmelegal.com"); it is
// used both for domain rejection and as the last-resort name.
func SelectBestName(info profile.BrandInfo, host string) (string, profile.Confidence) {
	domainName := domainLabel(host)

	// Structured metadata is trusted verbatim: a schema.org name matching
	// the domain is still a deliberate publisher statement, not an artifact.
	if name := strings.TrimSpace(info.SchemaOrgName); name != "" {
		return name, profile.ConfidenceHigh
	}

	candidates := collectCandidates(info)
	accepted := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != "" && !isDomainArtifact(c, host) {
			accepted = append(accepted, c)
		}
	}

	if len(accepted) == 0 {
		if domainName == "" {
			domainName = strings.TrimSpace(info.DomainBasedName)
		}
		return domainName, profile.ConfidenceLow
	}

	best := accepted[0]
	switch {
	case overlappingSources(accepted) >= 2:
		return best, profile.ConfidenceHigh
	case len(accepted) == 1:
		return best, profile.ConfidenceMedium
	default:
		// Multiple sources that disagree with each other.
		return best, profile.ConfidenceLow
	}
}

// collectCandidates returns non-structured signals in trust order.
func collectCandidates(info profile.BrandInfo) []string {
	logo := strings.TrimSpace(info.LogoText)
	if len(logo) <= 2 || strings.Contains(strings.ToLower(logo), "logo") {
		logo = ""
	}
	return []string{
		strings.TrimSpace(info.OGSiteName),
		logo,
		CleanFooterName(info.FooterCompanyName),
		BrandFromTitle(info.TitleBrandName),
		strings.TrimSpace(info.AboutPageName),
	}
}

// CleanFooterName strips copyright leads, years, "all rights reserved" and
// trailing legal suffixes from footer text.
func CleanFooterName(s string) string {
	s = strings.TrimSpace(s)
	s = copyrightLead.ReplaceAllString(s, "")
	s = yearSpan.ReplaceAllString(s, "")
	s = rightsReserved.ReplaceAllString(s, "")
	s = strings.Trim(s, " .,|-")

	lower := strings.ToLower(s)
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(lower, " "+suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			s = strings.Trim(s, " .,")
			break
		}
	}
	return strings.TrimSpace(s)
}

// BrandFromTitle extracts the brand fragment of a title tag. Titles commonly
// read "Page Name | Brand" or "Brand - Tagline"; the trailing segment is
// preferred unless it looks like a page label ("home") or runs too long.
func BrandFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	parts := titleSeparator.Split(title, -1)
	if len(parts) == 1 {
		return title
	}
	trailing := strings.TrimSpace(parts[len(parts)-1])
	leading := strings.TrimSpace(parts[0])
	if trailing == "" || strings.Contains(strings.ToLower(trailing), "home") || len(trailing) > 50 {
		return leading
	}
	return trailing
}

// ExtractAboutName scans about-page text for a brand name using a small set
// of textual patterns.
func ExtractAboutName(text string) string {
	for _, pattern := range aboutPatterns {
		m := pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		name := strings.TrimSpace(m[1])
		name = strings.Trim(name, ".,")
		// Single lowercase stopwords sneak into the capture on occasion.
		if name != "" && len(name) > 2 && !strings.EqualFold(name, "us") && !strings.EqualFold(name, "the") {
			return name
		}
	}
	return ""
}

// isDomainArtifact reports whether a candidate is just the domain dressed
// up: after lowercasing and stripping non-letters it matches the domain
// label, the full host, or either with generic suffix words removed. Such a
// candidate carries no brand signal beyond the URL itself.
func isDomainArtifact(candidate, host string) bool {
	normCand := normalizeLetters(candidate)
	if normCand == "" {
		return true
	}
	label := domainLabel(host)
	normHost := normalizeLetters(host)
	normLabel := normalizeLetters(label)

	if normCand == normLabel || normCand == normHost {
		return true
	}
	strippedCand := stripGenericSuffixes(normCand)
	strippedLabel := stripGenericSuffixes(normLabel)
	return strippedCand != "" && strippedCand == strippedLabel
}

func stripGenericSuffixes(norm string) string {
	for _, w := range genericSuffixWords {
		norm = strings.TrimSuffix(norm, w)
	}
	return norm
}

func normalizeLetters(s string) string {
	return nonLetters.ReplaceAllString(strings.ToLower(s), "")
}

func domainLabel(host string) string {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if i := strings.Index(host, "."); i > 0 {
		return host[:i]
	}
	return host
}

// overlappingSources counts candidates whose normalized forms overlap with
// the first accepted candidate (equal, or one contains the other).
func overlappingSources(accepted []string) int {
	if len(accepted) == 0 {
		return 0
	}
	base := normalizeLetters(accepted[0])
	count := 0
	for _, c := range accepted {
		n := normalizeLetters(c)
		if n == "" {
			continue
		}
		if strings.Contains(n, base) || strings.Contains(base, n) {
			count++
		}
	}
	return count
}
