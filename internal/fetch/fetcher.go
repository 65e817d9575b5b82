// Package fetch implements the HTTP fetch primitive using gocolly.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// ErrNoPage signals that the URL yielded no usable page: a non-2xx status or
// a non-HTML content type. Callers treat this as "page absent", not failure.
var ErrNoPage = errors.New("no usable page")

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Page is the raw result of a single successful fetch.
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// Client fetches pages and sitemaps with cloned colly collectors.
type Client struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Client.
func New(cfg Config) *Client {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())
	return &Client{
		cfg:           cfg,
		baseCollector: c,
	}
}

// FetchPage executes a single HTTP GET, following redirects. Transport
// errors are returned as-is; non-2xx statuses and non-HTML content types
// return ErrNoPage.
func (c *Client) FetchPage(ctx context.Context, url string) (Page, error) {
	page, err := c.fetch(ctx, url)
	if err != nil {
		return Page{}, err
	}
	if !strings.Contains(strings.ToLower(page.ContentType), "text/html") {
		return Page{}, fmt.Errorf("%w: content type %q", ErrNoPage, page.ContentType)
	}
	return page, nil
}

// FetchRaw executes a single HTTP GET without the HTML content-type check.
// Used for sitemap retrieval.
func (c *Client) FetchRaw(ctx context.Context, url string) (Page, error) {
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) (Page, error) {
	var (
		result   Page
		fetchErr error
		status   int
	)
	start := time.Now()

	collector := c.baseCollector.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	timeout := c.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	collector.OnResponse(func(r *colly.Response) {
		result = Page{
			URL:         r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
			Duration:    time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return Page{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil || fetchErr != nil {
			if status > 0 {
				return Page{}, fmt.Errorf("%w: status %d", ErrNoPage, status)
			}
			if err == nil {
				err = fetchErr
			}
			return Page{}, fmt.Errorf("visit %s: %w", url, err)
		}
		if result.StatusCode < 200 || result.StatusCode > 299 {
			return Page{}, fmt.Errorf("%w: status %d", ErrNoPage, result.StatusCode)
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
