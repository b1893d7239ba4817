// Package store defines the persistence interface for the concept
// knowledge graph and the build-job bookkeeping around it.
package store

import (
	"context"
	"time"

	"github.com/lattice-kg/lattice/pkg/common"
)

// Build job lifecycle states.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// BuildJob is the persisted record of one hierarchy build request.
type BuildJob struct {
	ID           string               `json:"id"`
	WorkspaceID  string               `json:"workspace_id"`
	DocumentName string               `json:"document_name"`
	ObjectKey    string               `json:"object_key"`
	Status       string               `json:"status"`
	Error        string               `json:"error,omitempty"`
	Stats        *common.ProcessStats `json:"stats,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// WorkspaceStats summarizes the persisted graph of one workspace.
type WorkspaceStats struct {
	WorkspaceID string         `json:"workspace_id"`
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	Evidence    int            `json:"evidence"`
	NodesByType map[string]int `json:"nodes_by_type"`
}

// GraphStorage persists concept nodes, their evidence trail, and the
// edges between them. Nodes are append-mostly: creation writes the full
// record, merges only ever add synthesis text and bump counters.
type GraphStorage interface {
	ListWorkspaceNodes(ctx context.Context, workspaceID string) ([]common.GraphNode, error)
	CreateNode(ctx context.Context, node *common.GraphNode) error
	MergeNode(ctx context.Context, nodeID string, synthesis string, confidence float64) error
	CountNodes(ctx context.Context, workspaceID string) (int, error)
	GetWorkspaceStats(ctx context.Context, workspaceID string) (*WorkspaceStats, error)

	AppendEvidence(ctx context.Context, evidence []common.Evidence) error
	CreateEdge(ctx context.Context, workspaceID, sourceID, targetID, kind string) error

	CreateJob(ctx context.Context, job *BuildJob) error
	SetJobStatus(ctx context.Context, jobID, status, errMsg string) error
	SetJobResult(ctx context.Context, jobID string, stats *common.ProcessStats) error
	GetJob(ctx context.Context, jobID string) (*BuildJob, error)
}

// ChunkRange invokes fn over [start, end) windows of at most chunkSize
// covering n items, stopping at the first error.
func ChunkRange(n, chunkSize int, fn func(start, end int) error) error {
	if chunkSize <= 0 {
		chunkSize = n
	}
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
