package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
)

func runAssetRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	assetController := controllers.NewAssetController(svc.Assets, svc.Sanitization, svc.Disposal, logger)
	imageController := controllers.NewAssetImageController(svc.Images, logger)

	assets := secureGroup.Group("/assets")
	assets.GET("", assetController.GetAssets)
	assets.POST("", assetController.CreateAsset)
	assets.GET("/:id", assetController.FindAsset)
	assets.PATCH("/:id", assetController.UpdateAsset)
	assets.POST("/:id/sanitize", assetController.SanitizeAsset)
	assets.POST("/:id/dispose", assetController.DisposeAsset)
	assets.GET("/:id/images", imageController.GetImages)
	assets.POST("/:id/images", imageController.UploadImage)
}
