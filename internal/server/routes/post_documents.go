package routes

import (
	"encoding/json"
	"net/http"

	"github.com/lattice-kg/lattice/internal/queue"
	"github.com/lattice-kg/lattice/internal/server/middleware"
	"github.com/lattice-kg/lattice/internal/storage"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SubmitDocumentHandler accepts a paragraph document, stores it, records
// a build job, and enqueues the job for the worker.
func SubmitDocumentHandler(c echo.Context) error {
	type submitDocumentBody struct {
		WorkspaceID  string   `param:"workspace_id" validate:"required"`
		DocumentName string   `json:"document_name" validate:"required"`
		Paragraphs   []string `json:"paragraphs" validate:"required,min=1"`
	}

	type submitDocumentResponse struct {
		Message string          `json:"message"`
		Job     *store.BuildJob `json:"job,omitempty"`
	}

	data := new(submitDocumentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitDocumentResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitDocumentResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitDocumentResponse{
			Message: "Internal server error",
		})
	}

	key, err := storage.PutParagraphDocument(ctx, app.S3, data.WorkspaceID, jobID, &storage.ParagraphDocument{
		Name:       data.DocumentName,
		Paragraphs: data.Paragraphs,
	})
	if err != nil {
		logger.Error("Failed to upload paragraph document", "err", err)
		return c.JSON(http.StatusInternalServerError, submitDocumentResponse{
			Message: "Internal server error",
		})
	}

	job := &store.BuildJob{
		ID:           jobID,
		WorkspaceID:  data.WorkspaceID,
		DocumentName: data.DocumentName,
		ObjectKey:    key,
		Status:       store.JobStatusQueued,
	}
	if err := app.Store.CreateJob(ctx, job); err != nil {
		logger.Error("Failed to create build job", "err", err)
		return c.JSON(http.StatusInternalServerError, submitDocumentResponse{
			Message: "Internal server error",
		})
	}

	msg, err := json.Marshal(queue.BuildJobMsg{
		JobID:        jobID,
		WorkspaceID:  data.WorkspaceID,
		DocumentName: data.DocumentName,
		ObjectKey:    key,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitDocumentResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, queue.HierarchyQueue, msg); err != nil {
		logger.Error("Failed to publish build job", "job_id", jobID, "err", err)
		return c.JSON(http.StatusInternalServerError, submitDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, submitDocumentResponse{
		Message: "Build job queued",
		Job:     job,
	})
}
