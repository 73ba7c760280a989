package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/services"
	apperrors "itad-system/pkg/errors"
	"itad-system/pkg/utils"
)

type AssetImageController struct {
	imageService services.AssetImageServiceInterface
	logger       *zap.Logger
}

func NewAssetImageController(imageService services.AssetImageServiceInterface, logger *zap.Logger) *AssetImageController {
	return &AssetImageController{imageService: imageService, logger: logger}
}

func (c *AssetImageController) GetImages(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	images, err := c.imageService.ListImages(reqCtx, ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"images": images}, "Images retrieved", http.StatusOK)
}

func (c *AssetImageController) UploadImage(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return utils.ErrorResponse(ctx, apperrors.NewValidationError("No file provided",
				apperrors.FieldIssue{Field: "file", Tag: "required", Message: "file is required"}), c.logger)
		}
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("Invalid multipart form"), c.logger)
	}

	image, err := c.imageService.UploadImage(reqCtx, ctx.Param("id"), fileHeader)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, image, "Image uploaded", http.StatusCreated)
}
