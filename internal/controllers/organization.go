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

type OrganizationController struct {
	orgService services.OrganizationServiceInterface
	logger     *zap.Logger
}

func NewOrganizationController(orgService services.OrganizationServiceInterface, logger *zap.Logger) *OrganizationController {
	return &OrganizationController{orgService: orgService, logger: logger}
}

func (c *OrganizationController) GetOrganizations(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgs, err := c.orgService.ListOrganizations(reqCtx, ctx.QueryParam("type"), ctx.QueryParam("active"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, orgs, "Organizations retrieved", http.StatusOK)
}

func (c *OrganizationController) FindOrganization(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	org, err := c.orgService.GetOrganization(reqCtx, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, org, "Organization found", http.StatusOK)
}

func (c *OrganizationController) CreateOrganization(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.CreateOrganizationDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	org, err := c.orgService.CreateOrganization(reqCtx, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, org, "Organization created", http.StatusCreated)
}

func (c *OrganizationController) UpdateOrganization(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.UpdateOrganizationDTO
	fields, err := utils.BindPatch(ctx, &data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	org, err := c.orgService.UpdateOrganization(reqCtx, ctx.Param("id"), data, fields)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, org, "Organization updated", http.StatusOK)
}

func (c *OrganizationController) DeleteOrganization(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if err := c.orgService.DeleteOrganization(reqCtx, ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *OrganizationController) GetLocations(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	locations, err := c.orgService.ListLocations(reqCtx, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, locations, "Locations retrieved", http.StatusOK)
}

func (c *OrganizationController) CreateLocation(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.CreateLocationDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	location, err := c.orgService.CreateLocation(reqCtx, ctx.Param("id"), data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, location, "Location created", http.StatusCreated)
}
