package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-relay/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>CORS Relay</title>
<style>
body{font-family:Arial,sans-serif;margin:40px;background:#f5f5f5}
.container{background:#fff;padding:30px;border-radius:8px;box-shadow:0 2px 10px rgba(0,0,0,.1)}
.status{color:#28a745;font-weight:bold}
.endpoint{background:#f8f9fa;padding:10px;border-radius:4px;font-family:monospace}
.warning{background:#fff3cd;border:1px solid #ffeaa7;padding:15px;border-radius:4px;margin:20px 0}
</style>
</head>
<body>
<div class="container">
<h1>CORS Relay</h1>
<p class="status">Relay is running on {{.BaseURL}}</p>
<h3>Usage</h3>
<p>Fetch any page through the relay and read it from the browser:</p>
<div class="endpoint">{{.BaseURL}}/proxy?url=YOUR_TARGET_URL</div>
<p>The response is JSON: <code>{"success": true, "url": "...", "content": "...", "length": 1234}</code>,
or <code>{"success": false, "error": "...", "code": 500}</code> on failure.
URLs without a scheme are fetched over https.</p>
<div class="warning">
<strong>Security notice:</strong> this relay is for local development only.
It fetches any URL for anyone who can reach it. Do not expose it to the public internet
or use it in production environments.
</div>
<p><em>Press Ctrl+C in the terminal to stop the relay.</em></p>
<p><small>cors-relay {{.Version}}</small></p>
</div>
</body>
</html>
`))

// IndexHandler serves the static status page.
type IndexHandler struct {
	page []byte
}

// NewIndexHandler renders the status page once for the configured address.
func NewIndexHandler(cfg *config.Config, v Version) (*IndexHandler, error) {
	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, struct {
		BaseURL string
		Version string
	}{
		BaseURL: "http://" + cfg.Server.Addr(),
		Version: string(v),
	})
	if err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	return &IndexHandler{page: buf.Bytes()}, nil
}

// Show writes the status page.
func (h *IndexHandler) Show(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, h.page)
}
