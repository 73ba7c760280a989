package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/services"
)

func runWorkOrderRouter(secureGroup *echo.Group, workOrderService services.WorkOrderServiceInterface, logger *zap.Logger) {
	woController := controllers.NewWorkOrderController(workOrderService, logger)

	workOrders := secureGroup.Group("/work-orders")
	workOrders.GET("", woController.GetWorkOrders)
	workOrders.POST("", woController.CreateWorkOrder)
	workOrders.PATCH("/:id", woController.UpdateWorkOrder)
	workOrders.POST("/:id/steps", woController.AddStep)
	workOrders.PATCH("/:id/steps", woController.UpdateStep)
	workOrders.PATCH("/:id/steps/:stepId", woController.UpdateStep)
}
