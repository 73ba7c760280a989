package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/services"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

type WorkOrderController struct {
	workOrderService services.WorkOrderServiceInterface
	logger           *zap.Logger
}

func NewWorkOrderController(workOrderService services.WorkOrderServiceInterface, logger *zap.Logger) *WorkOrderController {
	return &WorkOrderController{workOrderService: workOrderService, logger: logger}
}

func (c *WorkOrderController) GetWorkOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orders, err := c.workOrderService.ListWorkOrders(reqCtx, ctx.QueryParam("status"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, orders, "Work orders retrieved", http.StatusOK)
}

func (c *WorkOrderController) CreateWorkOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.CreateWorkOrderDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	wo, err := c.workOrderService.OpenWorkOrder(reqCtx, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, wo, "Work order opened", http.StatusCreated)
}

func (c *WorkOrderController) UpdateWorkOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.UpdateWorkOrderDTO
	fields, err := utils.BindPatch(ctx, &data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	wo, err := c.workOrderService.UpdateWorkOrder(reqCtx, ctx.Param("id"), data, fields)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, wo, "Work order updated", http.StatusOK)
}

func (c *WorkOrderController) AddStep(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.WorkOrderStepDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	step, err := c.workOrderService.AddStep(reqCtx, ctx.Param("id"), data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, step, "Step added", http.StatusCreated)
}

// UpdateStep serves both /steps/:stepId and /steps?stepId=.
func (c *WorkOrderController) UpdateStep(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	stepID := ctx.Param("stepId")
	if stepID == "" {
		stepID = ctx.QueryParam("stepId")
	}

	var data dto.UpdateWorkOrderStepDTO
	fields, err := utils.BindPatch(ctx, &data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	step, err := c.workOrderService.UpdateStep(reqCtx, ctx.Param("id"), stepID, data, fields)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, step, "Step updated", http.StatusOK)
}
