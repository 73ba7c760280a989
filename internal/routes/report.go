package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/services"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger) {
	reportController := controllers.NewReportController(reportService, logger)

	secureGroup.GET("/reports/export", reportController.ExportReport)
}
