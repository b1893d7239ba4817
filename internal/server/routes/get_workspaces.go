package routes

import (
	"net/http"

	"github.com/lattice-kg/lattice/internal/server/middleware"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetWorkspaceStatsHandler returns the aggregate node, edge, and
// evidence counts of one workspace's knowledge graph.
func GetWorkspaceStatsHandler(c echo.Context) error {
	type getStatsParams struct {
		WorkspaceID string `param:"workspace_id" validate:"required"`
	}

	type getStatsResponse struct {
		Message string                `json:"message"`
		Stats   *store.WorkspaceStats `json:"stats,omitempty"`
	}

	params := new(getStatsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getStatsResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getStatsResponse{
			Message: "Invalid request",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	stats, err := app.Store.GetWorkspaceStats(ctx, params.WorkspaceID)
	if err != nil {
		logger.Error("Failed to load workspace stats", "workspace", params.WorkspaceID, "err", err)
		return c.JSON(http.StatusInternalServerError, getStatsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getStatsResponse{
		Message: "OK",
		Stats:   stats,
	})
}
