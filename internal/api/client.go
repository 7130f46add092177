// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package api is the gateway to the remote blog REST API (a json-server
// style backend exposing /posts, /categories and /users). Every failure is
// reported as a *Error; nothing is retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cervejas/internal/metrics"
)

// DefaultBaseURL is the hosted API the blog runs against.
const DefaultBaseURL = "https://cervejas-api-fu2o.onrender.com"

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter // nil when outbound rate limiting is off
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets an overall per-request timeout. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// WithRateLimit caps outbound requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		userAgent: "cervejas-front/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	status := 0
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if apiErr, ok := err.(*Error); ok {
				outcome = apiErr.Kind.String()
			}
			slog.Error("api request failed",
				"op", op,
				"method", method,
				"path", path,
				"status", status,
				"error", err,
			)
		}
		metrics.ObserveAPICall(op, outcome, time.Since(start))
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return networkError(op, werr)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return networkError(op, fmt.Errorf("encode %s body: %w", op, merr))
		}
		reader = bytes.NewReader(payload)
	}

	req, rerr := http.NewRequestWithContext(ctx, method, target, reader)
	if rerr != nil {
		return networkError(op, rerr)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, herr := c.http.Do(req)
	if herr != nil {
		return networkError(op, herr)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return statusError(op, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
		return networkError(op, fmt.Errorf("decode %s response: %w", op, derr))
	}
	return nil
}
