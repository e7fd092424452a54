package server

import (
	"github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api/v1", middleware.AuthMiddleware)

	// Schema routes
	apiRoutes.GET("/schema/entities", routes.GetEntitySchemaHandler)
	apiRoutes.GET("/schema/relationships", routes.GetRelationshipSchemaHandler)

	// Entity routes
	apiRoutes.POST("/entities/:kind", routes.CreateEntityHandler, middleware.RequirePermission("entity.create"))
	apiRoutes.GET("/entities/:kind", routes.ListEntitiesHandler, middleware.RequirePermission("entity.view"))
	apiRoutes.GET("/entities/:kind/:name", routes.GetEntityHandler, middleware.RequirePermission("entity.view"))

	// Relationship routes
	apiRoutes.POST("/relationships/:kind", routes.CreateRelationshipHandler, middleware.RequirePermission("relationship.create"))
	apiRoutes.GET("/relationships/:kind/incoming/:target_id", routes.ListIncomingRelationshipsHandler, middleware.RequirePermission("relationship.view"))

	// Browse routes
	apiRoutes.GET("/search", routes.SearchEntitiesHandler, middleware.RequirePermission("entity.view"))
	apiRoutes.GET("/stats", routes.GetStatsHandler, middleware.RequireAnyPermission("entity.view", "graph.view"))
	apiRoutes.GET("/graph", routes.GetGraphHandler, middleware.RequirePermission("graph.view"))

	// Import routes
	apiRoutes.POST("/imports", routes.CreateImportHandler, middleware.RequirePermission("import.create"))
	apiRoutes.GET("/imports", routes.GetImportsHandler, middleware.RequirePermission("import.view"))
	apiRoutes.GET("/imports/templates/:class/:kind", routes.GetImportTemplateHandler, middleware.RequirePermission("import.view"))
	apiRoutes.GET("/imports/:id", routes.GetImportHandler, middleware.RequirePermission("import.view"))
}
