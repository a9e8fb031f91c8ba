// Package middleware provides Echo middleware for CORS, logging, metrics and security.
package middleware

import (
	"github.com/labstack/echo/v4"
)

// hopByHopHeaders are inbound headers that must not influence the relay.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// SecurityHeaders returns an Echo middleware that strips hop-by-hop headers
// from the inbound request and marks responses nosniff. Framing is left
// alone: the status page is harmless to embed, and the JSON envelope is
// meant to be read cross-origin.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, h := range hopByHopHeaders {
				c.Request().Header.Del(h)
			}

			c.Response().Header().Set(echo.HeaderXContentTypeOptions, "nosniff")

			return next(c)
		}
	}
}
