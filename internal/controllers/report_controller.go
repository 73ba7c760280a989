package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/services"
	"itad-system/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// ExportReport streams ?type=assets|chain-of-custody|work-orders as xlsx.
func (c *ReportController) ExportReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := utils.ParseFilterFromQuery(ctx.QueryParams(), "status", "clientId")
	reportType := ctx.QueryParam("type")
	c.logger.Debug("report export requested", zap.String("type", reportType), zap.Any("filters", filter.Filter))

	file, err := c.reportService.ExportReport(reqCtx, reportType, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, file.Content)
}
