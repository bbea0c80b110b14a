package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cinemacore/pkg/domain"
)

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrDeletedReference):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUniqueConstraint), errors.Is(err, domain.ErrSchedulingConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := statusFor(err)
	msg := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		msg = http.StatusText(status)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
