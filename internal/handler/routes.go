package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cors-relay/internal/config"
	"cors-relay/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. OPTIONS
// is answered by the CORS pre-middleware and everything else falls through
// to the error handler as 404.
func RegisterRoutes(e *echo.Echo, relay *RelayHandler, index *IndexHandler, cfg *config.Config, m *metrics.Metrics) {
	e.GET("/", index.Show)
	e.GET("/proxy", relay.Proxy)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
