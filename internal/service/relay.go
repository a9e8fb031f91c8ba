// Package service implements the relay fetch logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"cors-relay/internal/client"
	"cors-relay/internal/metrics"
	"cors-relay/internal/model"
)

// ErrMissingURL is returned when the url parameter is absent or empty.
var ErrMissingURL = errors.New("missing url parameter")

// MissingURLMessage is reported to callers that omit the url parameter.
const MissingURLMessage = "Missing 'url' parameter"

// Fetcher retrieves a target page. *client.PageClient is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*model.UpstreamResponse, error)
}

// RelayService fetches target pages on behalf of browser callers.
type RelayService struct {
	fetcher Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRelayService creates a RelayService. The metrics parameter is optional.
func NewRelayService(f Fetcher, logger *slog.Logger, m *metrics.Metrics) *RelayService {
	return &RelayService{
		fetcher: f,
		logger:  logger.With("component", "relay_service"),
		metrics: m,
	}
}

// NormalizeTarget builds a ProxyRequest from the raw url parameter value.
// The value is percent-decoded once more (invalid escapes are kept
// literally) and given an https:// scheme when it has no http(s) scheme.
func NormalizeTarget(raw string) (model.ProxyRequest, error) {
	if raw == "" {
		return model.ProxyRequest{}, ErrMissingURL
	}

	target := raw
	if decoded, err := url.PathUnescape(raw); err == nil {
		target = decoded
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	return model.ProxyRequest{TargetURL: target}, nil
}

// Proxy performs one fetch attempt for the raw url parameter. It never
// returns an error; every failure is described by the outcome.
func (s *RelayService) Proxy(ctx context.Context, raw string) model.FetchOutcome {
	pr, err := NormalizeTarget(raw)
	if err != nil {
		s.logger.Warn("rejected proxy request", "kind", model.FailureClientInput, "err", err)
		s.record(string(model.FailureClientInput), 0)
		return model.FetchOutcome{Failure: &model.Failure{
			Kind:       model.FailureClientInput,
			StatusCode: http.StatusBadRequest,
			Message:    MissingURLMessage,
		}}
	}

	s.logger.Info("fetching", "url", pr.TargetURL)

	start := time.Now()
	resp, err := s.fetcher.Fetch(ctx, pr.TargetURL)
	elapsed := time.Since(start)

	if err != nil {
		f := classifyError(err)
		s.logger.Warn("fetch failed",
			"kind", f.Kind,
			"code", f.StatusCode,
			"err", err,
			"url", pr.TargetURL,
		)
		s.record(string(f.Kind), elapsed)
		return model.FetchOutcome{URL: pr.TargetURL, Failure: f}
	}

	text := DecodeText(resp.Body)
	if resp.FinalURL != "" && resp.FinalURL != pr.TargetURL {
		s.logger.Debug("redirected", "url", pr.TargetURL, "final_url", resp.FinalURL)
	}
	s.logger.Info("fetched",
		"chars", utf8.RuneCountInString(text),
		"bytes", len(resp.Body),
		"url", pr.TargetURL,
	)
	s.record("success", elapsed)

	return model.FetchOutcome{
		URL: pr.TargetURL,
		Success: &model.Success{
			StatusCode: resp.StatusCode,
			BodyText:   text,
			ByteLength: len(resp.Body),
		},
	}
}

func (s *RelayService) record(outcome string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.FetchOutcomes.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		s.metrics.FetchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

// classifyError maps a fetch error onto the relay's failure taxonomy.
func classifyError(err error) *model.Failure {
	var se *client.StatusError
	if errors.As(err, &se) {
		return &model.Failure{
			Kind:       model.FailureUpstreamHTTP,
			StatusCode: se.StatusCode,
			Message:    "HTTP Error: " + se.Reason,
		}
	}

	if reason, ok := networkReason(err); ok {
		return &model.Failure{
			Kind:       model.FailureNetwork,
			StatusCode: http.StatusInternalServerError,
			Message:    "URL Error: " + reason,
		}
	}

	return &model.Failure{
		Kind:       model.FailureUnexpected,
		StatusCode: http.StatusInternalServerError,
		Message:    "Unexpected error: " + err.Error(),
	}
}

// networkReason reports whether err is a transport-level failure (DNS,
// connect, TLS, timeout, malformed URL) and, if so, a short reason.
func networkReason(err error) (string, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out", true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out", true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Error(), true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Err != nil {
			return opErr.Err.Error(), true
		}
		return opErr.Error(), true
	}

	// TLS and scheme failures surface wrapped in *url.Error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error(), true
	}

	return "", false
}
