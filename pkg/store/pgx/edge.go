package pgx

import (
	"context"
	"fmt"
)

// CreateEdge records a typed relationship between two persisted nodes.
// Re-assembling the same hierarchy produces the same edges, so conflicts
// are ignored rather than counted as errors.
func (s *GraphDBStorage) CreateEdge(ctx context.Context, workspaceID, sourceID, targetID, kind string) error {
	if sourceID == targetID {
		return fmt.Errorf("edge source and target are the same node: %s", sourceID)
	}
	_, err := s.conn.Exec(ctx, `
		INSERT INTO kg_edges (workspace_id, source_id, target_id, kind)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_id, target_id, kind) DO NOTHING`,
		workspaceID, sourceID, targetID, kind,
	)
	if err != nil {
		return fmt.Errorf("create edge %s -[%s]-> %s: %w", sourceID, kind, targetID, err)
	}
	return nil
}
