package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"cors-relay/internal/model"
)

// NewErrorHandler returns an echo.HTTPErrorHandler that renders every
// framework error as a JSON error envelope. Unknown paths and unsupported
// methods both become 404.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := errorStatus(err)
		if code == http.StatusNotFound {
			logger.Debug("no route",
				"kind", model.FailureRouting,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"err", err,
				"path", c.Request().URL.Path,
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, model.ErrorEnvelope(code, message))
		}
		if werr != nil {
			logger.Error("writing error response", "err", werr)
		}
	}
}

func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, "Unexpected error: " + err.Error()
	}

	switch he.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case http.StatusInternalServerError:
		if he.Internal != nil {
			return he.Code, "Unexpected error: " + he.Internal.Error()
		}
	}
	return he.Code, fmt.Sprint(he.Message)
}
