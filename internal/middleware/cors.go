package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// corsHeaders are attached to every response so any page may read it.
var corsHeaders = map[string]string{
	echo.HeaderAccessControlAllowOrigin:  "*",
	echo.HeaderAccessControlAllowMethods: "GET, POST, OPTIONS",
	echo.HeaderAccessControlAllowHeaders: "Content-Type, Authorization",
	echo.HeaderAccessControlMaxAge:       "86400",
}

// CORS returns an Echo middleware that sets permissive CORS headers before
// the handler runs, so error responses carry them too, and answers every
// OPTIONS request as a preflight with 200 and no body.
//
// Register it with e.Pre so preflights are answered before routing.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for k, v := range corsHeaders {
				h.Set(k, v)
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
