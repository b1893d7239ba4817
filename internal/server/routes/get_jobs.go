package routes

import (
	"net/http"

	"github.com/lattice-kg/lattice/internal/server/middleware"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetJobHandler returns one build job with its status and, once
// completed, the pipeline statistics.
func GetJobHandler(c echo.Context) error {
	type getJobParams struct {
		JobID string `param:"id" validate:"required"`
	}

	type getJobResponse struct {
		Message string          `json:"message"`
		Job     *store.BuildJob `json:"job,omitempty"`
	}

	params := new(getJobParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{
			Message: "Invalid request",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	job, err := app.Store.GetJob(ctx, params.JobID)
	if err != nil {
		logger.Error("Failed to load build job", "job_id", params.JobID, "err", err)
		return c.JSON(http.StatusInternalServerError, getJobResponse{
			Message: "Internal server error",
		})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, getJobResponse{
			Message: "Job not found",
		})
	}

	return c.JSON(http.StatusOK, getJobResponse{
		Message: "OK",
		Job:     job,
	})
}
