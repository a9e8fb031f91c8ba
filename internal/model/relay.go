// Package model defines shared types for the relay.
package model

import (
	"net/http"
	"unicode/utf8"
)

// ProxyRequest is a normalized request to fetch a target page.
type ProxyRequest struct {
	TargetURL string
}

// UpstreamResponse is a fully buffered upstream response with any
// Content-Encoding already removed from Body. FinalURL is the URL after
// redirects.
type UpstreamResponse struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       []byte
	FinalURL   string
}

// FailureKind classifies why a proxy attempt did not succeed.
type FailureKind string

const (
	FailureClientInput  FailureKind = "client_input"
	FailureUpstreamHTTP FailureKind = "upstream_http"
	FailureNetwork      FailureKind = "network"
	FailureUnexpected   FailureKind = "unexpected"
	FailureRouting      FailureKind = "routing"
)

// Success holds the result of a completed fetch.
type Success struct {
	StatusCode int
	BodyText   string
	ByteLength int
}

// Failure holds the reason a fetch could not be completed.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

// FetchOutcome is the tagged result of a proxy attempt. Exactly one of
// Success and Failure is non-nil.
type FetchOutcome struct {
	URL     string
	Success *Success
	Failure *Failure
}

// ProxyResponseEnvelope is the JSON body returned for every proxy attempt.
// Content and Length are pointers so an empty page still reports them.
type ProxyResponseEnvelope struct {
	Success bool    `json:"success"`
	URL     string  `json:"url,omitempty"`
	Content *string `json:"content,omitempty"`
	Length  *int    `json:"length,omitempty"`
	Error   string  `json:"error,omitempty"`
	Code    int     `json:"code,omitempty"`
}

// Envelope converts the outcome into its response envelope and HTTP status.
func (o FetchOutcome) Envelope() (int, ProxyResponseEnvelope) {
	if o.Failure != nil {
		return o.Failure.StatusCode, ErrorEnvelope(o.Failure.StatusCode, o.Failure.Message)
	}
	text := o.Success.BodyText
	n := utf8.RuneCountInString(text)
	return http.StatusOK, ProxyResponseEnvelope{
		Success: true,
		URL:     o.URL,
		Content: &text,
		Length:  &n,
	}
}

// ErrorEnvelope builds a failure envelope carrying code both as status and in the body.
func ErrorEnvelope(code int, message string) ProxyResponseEnvelope {
	return ProxyResponseEnvelope{
		Success: false,
		Error:   message,
		Code:    code,
	}
}
