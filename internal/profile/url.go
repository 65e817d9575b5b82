package profile

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a URL so frontier/visited membership checks
// agree on duplicates. It lowercases the scheme and host, removes default
// ports, and drops the query string and fragment entirely; only
// scheme+host+path identify a page.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" && strings.HasSuffix(u.Host, ":80") {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" && strings.HasSuffix(u.Host, ":443") {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = ""
	u.User = nil

	if u.Path == "" {
		u.Path = "/"
	}
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// SameHost reports whether candidate shares a host with base, treating a
// leading "www." as equivalent.
func SameHost(base, candidate string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	c, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return stripWWW(b.Hostname()) == stripWWW(c.Hostname())
}

// DomainName extracts the registrable label of a URL's host: "acmelegal"
// for "https://www.acmelegal.com/about". Used as the last-resort brand name.
func DomainName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := stripWWW(strings.ToLower(u.Hostname()))
	if host == "" {
		return ""
	}
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	return host
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
