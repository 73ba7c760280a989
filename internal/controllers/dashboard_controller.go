package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/services"
	"itad-system/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	userService      services.UserAccountServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(
	dashboardService services.DashboardServiceInterface,
	userService services.UserAccountServiceInterface,
	logger *zap.Logger,
) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, userService: userService, logger: logger}
}

func (c *DashboardController) GetDashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	summary, err := c.dashboardService.GetSummary(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Dashboard retrieved", http.StatusOK)
}

func (c *DashboardController) GetMe(ctx echo.Context) error {
	principal, err := utils.PrincipalFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, principal, "Current user", http.StatusOK)
}

func (c *DashboardController) GetUsers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	users, err := c.userService.ListUsers(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, users, "Users retrieved", http.StatusOK)
}
