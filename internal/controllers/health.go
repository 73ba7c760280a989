package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks map[string]HealthCheck
	logger *zap.Logger
}

func NewHealthController(checks map[string]HealthCheck, logger *zap.Logger) *HealthController {
	return &HealthController{checks: checks, logger: logger}
}

// Health answers 200 when every dependency responds and 503 otherwise.
func (c *HealthController) Health(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	report := make(map[string]string, len(c.checks))
	healthy := true
	for name, check := range c.checks {
		if err := check(reqCtx); err != nil {
			c.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			report[name] = "down"
			healthy = false
			continue
		}
		report[name] = "up"
	}

	if !healthy {
		return utils.ErrorResponse(ctx, &apperrors.HttpError{
			Code:    http.StatusServiceUnavailable,
			Message: "Service temporarily unavailable",
			Details: report,
		}, c.logger)
	}
	return utils.SuccessResponse(ctx, report, "ok", http.StatusOK)
}
