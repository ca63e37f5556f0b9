package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
)

// maxBodySize caps how much of a feed response is read.
const maxBodySize = 32 << 20

// Fetcher returns the current list of postings.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.JobSnapshot, error)
}

// Client is the HTTP implementation of Fetcher.
type Client struct {
	url      string
	http     *http.Client
	cache    *freecache.Cache
	cacheTTL time.Duration
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// NewClient returns a feed client for url. Requests time out after timeout.
// When cacheMB and cacheTTL are both positive, response bodies are cached
// for cacheTTL in a cacheMB-sized in-memory cache.
func NewClient(url string, timeout time.Duration, cacheMB int, cacheTTL time.Duration, logger logging.Logger, m *metrics.Metrics) *Client {
	c := &Client{
		url:      url,
		http:     &http.Client{Timeout: timeout},
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "feed"),
		metrics:  m,
	}
	if cacheMB > 0 && cacheTTL > 0 {
		c.cache = freecache.NewCache(cacheMB * 1024 * 1024)
	}
	return c
}

// Fetch downloads and normalizes the feed.
func (c *Client) Fetch(ctx context.Context) ([]models.JobSnapshot, error) {
	body, cached := c.cached()
	if cached {
		c.metrics.FeedFetches.WithLabelValues(metrics.OutcomeCached).Inc()
	} else {
		var err error
		body, err = c.download(ctx)
		if err != nil {
			c.metrics.FeedFetches.WithLabelValues(metrics.OutcomeError).Inc()
			c.logger.Error(ctx, "feed fetch failed", "url", c.url, "error", err)
			return nil, err
		}
	}

	jobs, skipped, err := Parse(body)
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(metrics.OutcomeMalformed).Inc()
		c.metrics.FeedJobs.Set(0)
		c.logger.Warn(ctx, "feed response has no jobs array", "url", c.url, "error", err)
		return jobs, nil
	}
	if skipped > 0 {
		c.logger.Warn(ctx, "skipped undecodable feed records", "count", skipped)
	}

	if !cached {
		c.store(ctx, body)
		c.metrics.FeedFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	}
	c.metrics.FeedJobs.Set(float64(len(jobs)))
	c.logger.Debug(ctx, "feed fetched", "jobs", len(jobs), "cached", cached)
	return jobs, nil
}

// Invalidate drops the cached body so the next Fetch goes to the network.
func (c *Client) Invalidate() {
	if c.cache != nil {
		c.cache.Del([]byte(c.url))
	}
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", common.ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: HTTP status %d", common.ErrFeedUnavailable, resp.StatusCode)
	}

	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", common.ErrFeedUnavailable, err)
		}
		defer gz.Close()
		r = gz
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", common.ErrFeedUnavailable, err)
	}
	return body, nil
}

func (c *Client) cached() ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	packed, err := c.cache.Get([]byte(c.url))
	if err != nil {
		return nil, false
	}
	body, err := s2.Decode(nil, packed)
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *Client) store(ctx context.Context, body []byte) {
	if c.cache == nil {
		return
	}
	packed := s2.Encode(nil, body)
	// freecache treats 0 as "never expires".
	ttl := max(int(c.cacheTTL.Seconds()), 1)
	if err := c.cache.Set([]byte(c.url), packed, ttl); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			c.logger.Debug(ctx, "feed body too large to cache", "bytes", len(packed))
			return
		}
		c.logger.Warn(ctx, "feed cache write failed", "error", err)
	}
}
