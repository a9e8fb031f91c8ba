// Package client provides the outbound HTTP client used to fetch target pages.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cors-relay/internal/config"
	"cors-relay/internal/metrics"
	"cors-relay/internal/model"
)

// browserHeaders identify the relay as a desktop browser so that sites
// serve the same markup a user would see.
var browserHeaders = http.Header{
	"User-Agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"},
	"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
	"Accept-Language": {"en-US,en;q=0.5"},
	"Accept-Encoding": {"gzip, deflate"},
	"Connection":      {"keep-alive"},
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d %s", e.StatusCode, e.Reason)
}

// PageClient fetches target pages with a browser identity.
type PageClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewPageClient creates a PageClient whose timeout bounds the whole fetch,
// connect through body read. The metrics parameter is optional; pass nil to
// disable upstream metrics recording.
func NewPageClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *PageClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// Accept-Encoding is set explicitly, so bodies are decoded in decodeContent.
		DisableCompression: true,
	}

	return &PageClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Upstream.Timeout(),
		},
		logger:  logger.With("component", "page_client"),
		metrics: m,
	}
}

// Fetch issues a single GET for target and buffers the decoded body.
// A non-2xx response is returned as a *StatusError without reading its body.
func (c *PageClient) Fetch(ctx context.Context, target string) (*model.UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header = browserHeaders.Clone()

	c.logger.Debug("upstream request", "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Reason: reasonPhrase(resp)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	encoding := resp.Header.Get("Content-Encoding")
	body, err := decodeContent(encoding, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q body: %w", encoding, err)
	}

	c.logger.Debug("upstream response",
		"url", target,
		"status", resp.StatusCode,
		"wire_bytes", len(raw),
		"bytes", len(body),
	)

	return &model.UpstreamResponse{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// reasonPhrase extracts the reason text from the status line, falling back
// to the standard text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
