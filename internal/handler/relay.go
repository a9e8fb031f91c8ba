// Package handler implements the relay's HTTP routes.
package handler

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"cors-relay/internal/service"
)

// RelayHandler serves the proxy endpoint.
type RelayHandler struct {
	service *service.RelayService
	logger  *slog.Logger
}

// NewRelayHandler creates a RelayHandler.
func NewRelayHandler(svc *service.RelayService, logger *slog.Logger) *RelayHandler {
	return &RelayHandler{
		service: svc,
		logger:  logger.With("component", "relay_handler"),
	}
}

// Proxy fetches the page named by the url query parameter and answers with
// a JSON envelope. The fetch is detached from the inbound request so a
// client disconnect does not abort it; only the upstream timeout does.
func (h *RelayHandler) Proxy(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())

	out := h.service.Proxy(ctx, c.QueryParam("url"))

	code, env := out.Envelope()
	return c.JSON(code, env)
}
