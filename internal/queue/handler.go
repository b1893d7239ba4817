package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lattice-kg/lattice/internal/storage"
	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/graph"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator"
)

var validate = validator.New()

// BuildJobMsg is the wire format of one hierarchy build request.
type BuildJobMsg struct {
	JobID        string `json:"job_id" validate:"required"`
	WorkspaceID  string `json:"workspace_id" validate:"required"`
	DocumentName string `json:"document_name"`
	ObjectKey    string `json:"object_key" validate:"required"`
}

// ProcessHierarchyMessage handles one build job end to end: fetch the
// paragraph document, run the pipeline, and record the outcome on the
// persisted job. A returned error sends the message to the retry path.
func ProcessHierarchyMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.GraphAIClient,
	hierarchyClient *graph.HierarchyClient,
	storeClient store.GraphStorage,
	msg string,
) (err error) {
	data := new(BuildJobMsg)
	if err = json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("malformed build job message: %w", err)
	}
	if err = validate.Struct(data); err != nil {
		return fmt.Errorf("invalid build job message: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if updateErr := storeClient.SetJobStatus(updateCtx, data.JobID, store.JobStatusFailed, err.Error()); updateErr != nil {
			logger.Warn("[Queue] Failed to mark job as failed",
				"job_id", data.JobID, "workspace", data.WorkspaceID, "err", updateErr)
		}
	}()

	if err = storeClient.SetJobStatus(ctx, data.JobID, store.JobStatusRunning, ""); err != nil {
		return err
	}

	doc, err := storage.FetchParagraphDocument(ctx, s3Client, data.ObjectKey)
	if err != nil {
		return err
	}

	docName := data.DocumentName
	if docName == "" {
		docName = doc.Name
	}

	stats, err := hierarchyClient.ProcessDocument(ctx, graph.ProcessDocumentParams{
		WorkspaceID:  data.WorkspaceID,
		SourceID:     data.JobID,
		DocumentName: docName,
		Paragraphs:   doc.Paragraphs,
	}, aiClient, storeClient)
	if err != nil {
		return err
	}

	if err = storeClient.SetJobResult(ctx, data.JobID, stats); err != nil {
		return err
	}

	logger.Info("[Queue] Build job completed",
		"job_id", data.JobID,
		"workspace", data.WorkspaceID,
		"tree_nodes", stats.TreeNodes,
		"created", stats.Assemble.NodesCreated,
		"merged", stats.Assemble.NodesMerged,
		"expansion_errors", stats.ExpansionErrors)
	return nil
}
