// Package httpds fetches a raw export over HTTP with retry and exponential
// backoff on transient failures (transport errors, 429 and 5xx).
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config configures the HTTP source. Zero values get defaults: Timeout 5m,
// InitialBackoff 200ms, MaxBackoff 5s. MaxRetries=0 means a single attempt.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool

	// Header is added to every request.
	Header http.Header

	// Transport overrides the default *http.Transport.
	Transport http.RoundTripper
}

// Source is a datasource bound to one URL.
type Source struct {
	url     string
	client  *http.Client
	retries int
	initial time.Duration
	max     time.Duration
	header  http.Header

	sleep func(context.Context, time.Duration) error
}

func New(url string, cfg Config) *Source {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // explicitly configurable
		}
	}
	return &Source{
		url:     url,
		client:  &http.Client{Timeout: cfg.Timeout, Transport: transport},
		retries: cfg.MaxRetries,
		initial: cfg.InitialBackoff,
		max:     cfg.MaxBackoff,
		header:  cfg.Header.Clone(),
		sleep:   sleepContext,
	}
}

// URL returns the bound URL.
func (s *Source) URL() string { return s.url }

// Open GETs the URL and returns the response body on a 2xx status. The caller
// must close it.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, backoff(s.initial, attempt-1, s.max)); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range s.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := s.client.Do(req)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("httpds: get %s: %w", s.url, err)
		case retryable(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: get %s: retryable status %d", s.url, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpds: get %s: status %d", s.url, resp.StatusCode)
		default:
			return resp.Body, nil
		}
	}
	return nil, lastErr
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

// backoff returns initial*2^retry clamped to max.
func backoff(initial time.Duration, retry int, max time.Duration) time.Duration {
	d := initial
	for i := 0; i < retry && d < max; i++ {
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
