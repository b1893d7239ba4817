package pgx

import (
	"context"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/store"
)

// GetWorkspaceStats aggregates node, edge, and evidence counts for a
// workspace, including a per-type node breakdown.
func (s *GraphDBStorage) GetWorkspaceStats(ctx context.Context, workspaceID string) (*store.WorkspaceStats, error) {
	stats := &store.WorkspaceStats{
		WorkspaceID: workspaceID,
		NodesByType: map[string]int{},
	}

	rows, err := s.conn.Query(ctx, `
		SELECT type, count(*)
		FROM kg_nodes
		WHERE workspace_id = $1
		GROUP BY type`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("workspace node stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			nodeType string
			count    int
		)
		if err := rows.Scan(&nodeType, &count); err != nil {
			return nil, fmt.Errorf("scan node stats: %w", err)
		}
		stats.NodesByType[nodeType] = count
		stats.Nodes += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.conn.QueryRow(ctx,
		`SELECT count(*) FROM kg_edges WHERE workspace_id = $1`, workspaceID,
	).Scan(&stats.Edges)
	if err != nil {
		return nil, fmt.Errorf("workspace edge stats: %w", err)
	}

	err = s.conn.QueryRow(ctx, `
		SELECT count(*)
		FROM kg_evidence e
		JOIN kg_nodes n ON n.id = e.node_id
		WHERE n.workspace_id = $1`, workspaceID,
	).Scan(&stats.Evidence)
	if err != nil {
		return nil, fmt.Errorf("workspace evidence stats: %w", err)
	}

	return stats, nil
}
