package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// CreateJob records a new build job in the queued state.
func (s *GraphDBStorage) CreateJob(ctx context.Context, job *store.BuildJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	status := job.Status
	if status == "" {
		status = store.JobStatusQueued
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO build_jobs (id, workspace_id, document_name, object_key, status)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.WorkspaceID, job.DocumentName, job.ObjectKey, status,
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", job.ID, err)
	}
	return nil
}

// SetJobStatus transitions a job and records an error message when the
// transition is a failure.
func (s *GraphDBStorage) SetJobStatus(ctx context.Context, jobID, status, errMsg string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE build_jobs
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1`,
		jobID, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("set job %s status: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set job %s status: not found", jobID)
	}
	return nil
}

// SetJobResult marks a job completed and stores its run statistics.
func (s *GraphDBStorage) SetJobResult(ctx context.Context, jobID string, stats *common.ProcessStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal job stats: %w", err)
	}
	tag, err := s.conn.Exec(ctx, `
		UPDATE build_jobs
		SET status = $2, stats = $3, updated_at = now()
		WHERE id = $1`,
		jobID, store.JobStatusCompleted, statsJSON,
	)
	if err != nil {
		return fmt.Errorf("set job %s result: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set job %s result: not found", jobID)
	}
	return nil
}

// GetJob loads one build job by ID, returning nil when it does not exist.
func (s *GraphDBStorage) GetJob(ctx context.Context, jobID string) (*store.BuildJob, error) {
	var (
		job       store.BuildJob
		statsJSON []byte
	)
	err := s.conn.QueryRow(ctx, `
		SELECT id, workspace_id, document_name, object_key, status,
		       coalesce(error, ''), stats, created_at, updated_at
		FROM build_jobs
		WHERE id = $1`, jobID,
	).Scan(
		&job.ID, &job.WorkspaceID, &job.DocumentName, &job.ObjectKey,
		&job.Status, &job.Error, &statsJSON, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if len(statsJSON) > 0 {
		var stats common.ProcessStats
		if err := json.Unmarshal(statsJSON, &stats); err != nil {
			return nil, fmt.Errorf("unmarshal job %s stats: %w", jobID, err)
		}
		job.Stats = &stats
	}
	return &job, nil
}
