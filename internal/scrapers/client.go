// Package scrapers implements the fetch/parse capability pairs for each
// source type: greenhouse, workday, rss, api, html.
package scrapers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps a plain net/http.Client with the shared token-bucket limiter
// every outbound scrape request goes through, preferring a small
// constructor over a configurable client builder.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(timeout time.Duration, rps float64) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 2),
	}
}

// Fetch performs a rate-limited GET and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "jobworker/1.0 (+https://github.com/jobworker/engine)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return body, nil
}

// ContentType issues a lightweight HEAD (falling back to GET when HEAD is
// rejected) to probe the content-type for source detection.
func (c *Client) ContentType(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err = c.http.Do(getReq)
		if err != nil {
			return "", err
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
		}
	}
	return resp.Header.Get("Content-Type"), nil
}
