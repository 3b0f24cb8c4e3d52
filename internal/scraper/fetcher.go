package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// FetchConfig holds the transport-level settings for page retrieval.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyTransport implements Transport using a Colly collector. A base
// collector is configured once and cloned per request.
type CollyTransport struct {
	base   *colly.Collector
	logger *zap.Logger
}

// NewCollyTransport constructs a configured Colly-based Transport.
func NewCollyTransport(cfg FetchConfig, logger *zap.Logger) (*CollyTransport, error) {
	if cfg.UserAgent == "" {
		return nil, errors.New("user agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.Async(true),
	)
	// Retries revisit the same URL, so revisit blocking must stay off.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &CollyTransport{
		base:   base,
		logger: logger,
	}, nil
}

// RoundTrip performs one fetch attempt. HTTP error statuses are reported as
// errors with the status code preserved on the returned Page.
func (t *CollyTransport) RoundTrip(ctx context.Context, rawURL string) (Page, error) {
	collector := t.base.Clone()
	resultCh := make(chan roundTripResult, 1)
	var once sync.Once
	send := func(res roundTripResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		page := Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}
		send(roundTripResult{page: page})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		page := Page{URL: rawURL}
		if r != nil {
			page.StatusCode = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				page.FinalURL = r.Request.URL.String()
			}
		}
		send(roundTripResult{page: page, err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{URL: rawURL}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return res.page, err
		}
		return res.page, res.err
	default:
		return Page{URL: rawURL}, errors.New("fetch produced no result")
	}
}

type roundTripResult struct {
	page Page
	err  error
}

// Client is the retrying fetch layer used by the crawl engine. It applies a
// fixed inter-request delay before each new page fetch and a bounded,
// policy-driven retry loop around transient failures. Not safe for concurrent
// use.
type Client struct {
	transport Transport
	policy    RetryPolicy
	clock     Clock
	pause     pauser
	delay     time.Duration
	logger    *zap.Logger

	lastAttempt time.Time
}

// NewClient builds a retrying fetch client. delay is the hard floor between
// page fetches; it is honored even when the previous fetch failed.
func NewClient(transport Transport, policy RetryPolicy, clock Clock, delay time.Duration, logger *zap.Logger) *Client {
	return &Client{
		transport: transport,
		policy:    policy,
		clock:     clock,
		pause:     timerPauser{},
		delay:     delay,
		logger:    logger,
	}
}

// Fetch retrieves and parses a page, retrying transient failures per the
// configured policy. Non-transient failures (404-class) surface immediately
// wrapped in a FetchError whose chain includes ErrNotFound.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*goquery.Document, Page, error) {
	c.waitTurn(ctx)

	var page Page
	var lastErr error
	attempt := 0
	for {
		attempt++
		page, lastErr = c.attempt(ctx, rawURL)
		if lastErr == nil {
			break
		}
		if !c.policy.ShouldRetry(lastErr, attempt) {
			return nil, page, &FetchError{
				URL:        rawURL,
				StatusCode: page.StatusCode,
				Attempts:   attempt,
				Err:        lastErr,
			}
		}
		backoff := c.policy.Backoff(attempt)
		c.logger.Warn("fetch attempt failed, retrying",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)
		c.pause.Pause(ctx, backoff)
		if err := ctx.Err(); err != nil {
			return nil, page, &FetchError{URL: rawURL, Attempts: attempt, Err: err}
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, page, &ParseError{URL: rawURL, What: "document", Err: err}
	}
	return doc, page, nil
}

// attempt runs one transport round trip and classifies the outcome. The
// attempt timestamp is recorded regardless of result so the inter-request
// floor holds under error conditions too.
func (c *Client) attempt(ctx context.Context, rawURL string) (Page, error) {
	page, err := c.transport.RoundTrip(ctx, rawURL)
	c.lastAttempt = c.clock.Now()
	TotalRequests.Inc()
	if err == nil {
		return page, nil
	}
	TotalRequestErrors.Inc()
	switch page.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return page, fmt.Errorf("status %d: %w", page.StatusCode, ErrNotFound)
	}
	return page, err
}

func (c *Client) waitTurn(ctx context.Context) {
	if c.delay <= 0 || c.lastAttempt.IsZero() {
		return
	}
	elapsed := c.clock.Now().Sub(c.lastAttempt)
	if wait := c.delay - elapsed; wait > 0 {
		c.pause.Pause(ctx, wait)
	}
}
