// Package checker visits every URL listed in a sitemap against a running
// server and reports which ones respond.
package checker

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/romangod6/site-devserver/internal/models"
)

type Logger interface {
	LogInfo(format string, v ...interface{})
	LogError(format string, v ...interface{})
}

type Config struct {
	// BaseURL replaces scheme and host of every loc. Empty visits locs as-is.
	BaseURL     string
	UserAgent   string
	Parallelism int
	Timeout     time.Duration
}

// Result is the outcome of visiting one sitemap loc.
type Result struct {
	Loc        string `json:"loc"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 300
}

// Report holds results in sitemap order.
type Report struct {
	results []Result
	mutex   sync.RWMutex
}

func newReport(n int) *Report {
	return &Report{results: make([]Result, n)}
}

func (r *Report) set(idx int, res Result) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.results[idx] = res
}

func (r *Report) Results() []Result {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Failed returns the results that did not answer with a 2xx.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results() {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

type Checker struct {
	config *Config
	logger Logger
}

func NewChecker(config *Config, logger Logger) *Checker {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return &Checker{config: config, logger: logger}
}

func (c *Checker) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent(c.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.Async(true),
	)

	// Set reasonable limits
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.config.Parallelism,
	})
	if c.config.Timeout > 0 {
		collector.SetRequestTimeout(c.config.Timeout)
	}

	return collector
}

// Check visits every URL in sitemap and waits for all responses.
func (c *Checker) Check(ctx context.Context, sitemap *models.Sitemap) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := newReport(len(sitemap.URLs))
	collector := c.newCollector()

	collector.OnResponse(func(r *colly.Response) {
		idx, loc := requestIndex(r)
		if idx < 0 {
			return
		}
		res := Result{
			Loc:        loc,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
		}
		if isHTML(r.Headers.Get("Content-Type")) {
			res.Title = pageTitle(r.Body)
		}
		c.logger.LogInfo("%d %s %s", r.StatusCode, res.URL, res.Title)
		report.set(idx, res)
	})

	collector.OnError(func(r *colly.Response, err error) {
		idx, loc := requestIndex(r)
		if idx < 0 {
			return
		}
		res := Result{
			Loc:        loc,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Error:      err.Error(),
		}
		c.logger.LogError("%d %s: %v", r.StatusCode, res.URL, err)
		report.set(idx, res)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for idx, u := range sitemap.URLs {
			select {
			case <-ctx.Done():
				return
			default:
			}

			target, err := rewriteLoc(u.Loc, c.config.BaseURL)
			if err != nil {
				report.set(idx, Result{Loc: u.Loc, Error: err.Error()})
				continue
			}

			rctx := colly.NewContext()
			rctx.Put("loc", u.Loc)
			rctx.Put("idx", strconv.Itoa(idx))
			if err := collector.Request("GET", target, nil, rctx, nil); err != nil {
				report.set(idx, Result{Loc: u.Loc, URL: target, Error: err.Error()})
			}
		}
		collector.Wait()
	}()

	// Wait for either completion or context cancellation
	select {
	case <-ctx.Done():
		return report, ctx.Err()
	case <-done:
		return report, nil
	}
}

func requestIndex(r *colly.Response) (int, string) {
	if r == nil || r.Ctx == nil {
		return -1, ""
	}
	idx, err := strconv.Atoi(r.Ctx.Get("idx"))
	if err != nil {
		return -1, ""
	}
	return idx, r.Ctx.Get("loc")
}

// rewriteLoc moves loc onto base, keeping path and query.
func rewriteLoc(loc, base string) (string, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("invalid loc %q: %w", loc, err)
	}
	if base == "" {
		return u.String(), nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if b.Scheme == "" || b.Host == "" {
		return "", fmt.Errorf("base URL %q needs a scheme and host", base)
	}

	u.Scheme = b.Scheme
	u.Host = b.Host
	u.User = b.User
	return u.String(), nil
}
