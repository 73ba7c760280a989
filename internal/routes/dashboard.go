package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/services"
)

func runDashboardRouter(
	secureGroup *echo.Group,
	dashboardService services.DashboardServiceInterface,
	userService services.UserAccountServiceInterface,
	logger *zap.Logger,
) {
	dashboardController := controllers.NewDashboardController(dashboardService, userService, logger)

	secureGroup.GET("/dashboard", dashboardController.GetDashboard)
	secureGroup.GET("/me", dashboardController.GetMe)
	secureGroup.GET("/users", dashboardController.GetUsers)
}
