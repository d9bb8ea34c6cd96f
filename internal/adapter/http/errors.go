package http

import (
	"context"
	"errors"
	"net/http"

	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusOf maps engine error kinds to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidStateTransition),
		errors.Is(err, ledger.ErrConcurrentMovement),
		errors.Is(err, ledger.ErrBalanceDrift):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err; internal failures are logged and not echoed back.
func writeError(c echo.Context, err error) error {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		logger.WithFields(map[string]any{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Errorf("http: unhandled error: %v", err)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bind decodes and validates the request body into req.
// It writes the error response itself and reports whether to continue.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
