package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/services"
)

func runIntakeRouter(secureGroup *echo.Group, intakeService services.IntakeServiceInterface, logger *zap.Logger) {
	intakeController := controllers.NewIntakeController(intakeService, logger)

	secureGroup.GET("/intake", intakeController.GetIntakeOrders)
	secureGroup.POST("/intake", intakeController.CreateIntakeOrder)
}
