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

type IntakeController struct {
	intakeService services.IntakeServiceInterface
	logger        *zap.Logger
}

func NewIntakeController(intakeService services.IntakeServiceInterface, logger *zap.Logger) *IntakeController {
	return &IntakeController{intakeService: intakeService, logger: logger}
}

func (c *IntakeController) GetIntakeOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orders, err := c.intakeService.ListIntakeOrders(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, orders, "Intake orders retrieved", http.StatusOK)
}

func (c *IntakeController) CreateIntakeOrder(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.CreateIntakeOrderDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.intakeService.CreateIntakeOrder(reqCtx, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Intake order created", http.StatusCreated)
}
