package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"itad-system/internal/controllers"
	"itad-system/internal/services"
)

func runOrganizationRouter(secureGroup *echo.Group, orgService services.OrganizationServiceInterface, logger *zap.Logger) {
	orgController := controllers.NewOrganizationController(orgService, logger)

	orgs := secureGroup.Group("/organizations")
	orgs.GET("", orgController.GetOrganizations)
	orgs.POST("", orgController.CreateOrganization)
	orgs.GET("/:id", orgController.FindOrganization)
	orgs.PATCH("/:id", orgController.UpdateOrganization)
	orgs.DELETE("/:id", orgController.DeleteOrganization)
	orgs.GET("/:id/locations", orgController.GetLocations)
	orgs.POST("/:id/locations", orgController.CreateLocation)
}
