package server

import (
	"github.com/lattice-kg/lattice/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/workspaces/:workspace_id/documents", routes.SubmitDocumentHandler)

	// Job routes
	apiRoutes.GET("/jobs/:id", routes.GetJobHandler)

	// Workspace routes
	apiRoutes.GET("/workspaces/:workspace_id/stats", routes.GetWorkspaceStatsHandler)
}
