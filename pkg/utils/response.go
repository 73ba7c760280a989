package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

const unavailableHint = "Database is unreachable. Check that PostgreSQL is running and DATABASE_URL is correct."

// SuccessResponse writes the standard envelope. Passing a pagination wraps body as {list, pagination}.
func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, pagination ...types.Pagination) error {
	response := &HTTPResponse{Status: true, Message: message, Body: body}
	if len(pagination) > 0 {
		response.Body = map[string]interface{}{"list": body, "pagination": pagination[0]}
	}
	return ctx.JSON(code, response)
}

// ErrorResponse is the single place where domain errors become HTTP statuses.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		return c.JSON(httpErr.Code, &HTTPResponse{Status: false, Message: httpErr.Message, Body: httpErr.Details})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		issues := make([]apperrors.FieldIssue, 0, len(validationErrors))
		for _, e := range validationErrors {
			issues = append(issues, apperrors.FieldIssue{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: validationMessage(e),
			})
		}
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: "Validation failed", Body: issues})
	}

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: vErr.Message, Body: vErr.Issues})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code < http.StatusInternalServerError {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return c.JSON(echoErr.Code, &HTTPResponse{Status: false, Message: msg})
	}

	switch {
	case isAuthError(err):
		return c.JSON(http.StatusUnauthorized, &HTTPResponse{Status: false, Message: "Unauthorized"})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, &HTTPResponse{Status: false, Message: publicMessage(err, apperrors.ErrNotFound)})
	case errors.Is(err, apperrors.ErrConflict):
		// conflicts are reported as client errors alongside validation failures
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: publicMessage(err, apperrors.ErrConflict)})
	case errors.Is(err, apperrors.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: err.Error()})
	case apperrors.IsUnavailable(err):
		logger.Error("Dependency unavailable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, &HTTPResponse{
			Status:  false,
			Message: "Service temporarily unavailable",
			Body:    map[string]string{"hint": unavailableHint},
		})
	}

	logger.Error("Unexpected error",
		zap.Error(err),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
	)
	return c.JSON(http.StatusInternalServerError, &HTTPResponse{Status: false, Message: "Internal server error"})
}

func isAuthError(err error) bool {
	for _, target := range []error{
		apperrors.ErrUnauthorized,
		apperrors.ErrEmptyAuthHeader,
		apperrors.ErrInvalidAuthHeader,
		apperrors.ErrInvalidToken,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenNotYetValid,
		apperrors.ErrInvalidSigningMethod,
		apperrors.ErrPrincipalNotFoundInContext,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// publicMessage drops the trailing sentinel text added by NewNotFoundError and NewConflictError.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	suffix := ": " + sentinel.Error()
	if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
		return msg[:len(msg)-len(suffix)]
	}
	return msg
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "email":
		return "must be a valid email address"
	case "iso_date":
		return "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp"
	case "asset_status", "identifier_type", "sanitize_method", "wo_type", "org_type", "risk_tier", "r2v3":
		return "has an unsupported value"
	}
	return "failed on the '" + e.Tag() + "' rule"
}
