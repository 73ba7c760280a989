package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/dto"
	"itad-system/internal/services"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/types"
	"itad-system/pkg/utils"
)

const idempotencyKeyHeader = "Idempotency-Key"

type AssetController struct {
	assetService        services.AssetServiceInterface
	sanitizationService services.SanitizationServiceInterface
	disposalService     services.DisposalServiceInterface
	logger              *zap.Logger
}

func NewAssetController(
	assetService services.AssetServiceInterface,
	sanitizationService services.SanitizationServiceInterface,
	disposalService services.DisposalServiceInterface,
	logger *zap.Logger,
) *AssetController {
	return &AssetController{
		assetService:        assetService,
		sanitizationService: sanitizationService,
		disposalService:     disposalService,
		logger:              logger,
	}
}

func (c *AssetController) GetAssets(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.QueryParams(), "status", "clientId")

	assets, total, err := c.assetService.ListAssets(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if !filter.WithPagination {
		return utils.SuccessResponse(ctx, assets, "Assets retrieved", http.StatusOK)
	}
	return utils.SuccessResponse(ctx, assets, "Assets retrieved", http.StatusOK,
		types.NewPagination(filter.Page, filter.Limit, total))
}

func (c *AssetController) FindAsset(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	asset, err := c.assetService.GetAsset(reqCtx, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, asset, "Asset found", http.StatusOK)
}

func (c *AssetController) CreateAsset(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.CreateAssetDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	asset, err := c.assetService.CreateAsset(reqCtx, data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, asset, "Asset created", http.StatusCreated)
}

func (c *AssetController) UpdateAsset(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.UpdateAssetDTO
	fields, err := utils.BindPatch(ctx, &data)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	asset, err := c.assetService.UpdateAsset(reqCtx, ctx.Param("id"), data, fields)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, asset, "Asset updated", http.StatusOK)
}

func (c *AssetController) SanitizeAsset(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.SanitizeAssetDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	key := ctx.Request().Header.Get(idempotencyKeyHeader)
	res, err := c.sanitizationService.Sanitize(reqCtx, ctx.Param("id"), data, key)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Asset sanitized", http.StatusOK)
}

func (c *AssetController) DisposeAsset(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data dto.DisposeAssetDTO
	if err := ctx.Bind(&data); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid request body"), c.logger)
	}
	if err := ctx.Validate(&data); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	key := ctx.Request().Header.Get(idempotencyKeyHeader)
	res, err := c.disposalService.Dispose(reqCtx, ctx.Param("id"), data, key)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Asset disposed", http.StatusOK)
}
