package pgx

import (
	"context"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// ListWorkspaceNodes returns every persisted node of a workspace with
// its embedding, the working set the assembly matcher runs against.
func (s *GraphDBStorage) ListWorkspaceNodes(ctx context.Context, workspaceID string) ([]common.GraphNode, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, workspace_id, type, name, synthesis, level,
		       source_count, total_confidence, embedding, created_at, updated_at
		FROM kg_nodes
		WHERE workspace_id = $1
		ORDER BY created_at`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list workspace nodes: %w", err)
	}
	defer rows.Close()

	var nodes []common.GraphNode
	for rows.Next() {
		var (
			node common.GraphNode
			vec  pgvector.Vector
		)
		if err := rows.Scan(
			&node.ID, &node.WorkspaceID, &node.Type, &node.Name, &node.Synthesis,
			&node.Level, &node.SourceCount, &node.TotalConfidence, &vec,
			&node.CreatedAt, &node.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workspace node: %w", err)
		}
		node.Embedding = vec.Slice()
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// CreateNode inserts a new node. The unique index on
// (workspace_id, lower(name), type) backs up the in-process matcher: a
// concurrent insert of the same concept fails here instead of producing
// a duplicate.
func (s *GraphDBStorage) CreateNode(ctx context.Context, node *common.GraphNode) error {
	if node == nil {
		return fmt.Errorf("node is nil")
	}
	if len(node.Embedding) == 0 {
		return fmt.Errorf("node %q has no embedding", node.Name)
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	_, err := s.conn.Exec(ctx, `
		INSERT INTO kg_nodes
			(id, workspace_id, type, name, synthesis, level,
			 source_count, total_confidence, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		node.ID, node.WorkspaceID, node.Type, node.Name, node.Synthesis,
		node.Level, node.SourceCount, node.TotalConfidence,
		pgvector.NewVector(node.Embedding),
	)
	if err != nil {
		return fmt.Errorf("create node %q: %w", node.Name, err)
	}

	logger.Debug("[Store] Node created", "id", node.ID, "name", node.Name, "type", node.Type)
	return nil
}

// MergeNode appends synthesis text to an existing node, bumps its source
// count, and accumulates confidence. The original synthesis is never
// rewritten.
func (s *GraphDBStorage) MergeNode(ctx context.Context, nodeID string, synthesis string, confidence float64) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE kg_nodes
		SET synthesis = CASE
			  WHEN $2 = '' THEN synthesis
			  WHEN synthesis = '' THEN $2
			  ELSE synthesis || E'\n\n' || $2
			END,
		    source_count = source_count + 1,
		    total_confidence = total_confidence + $3,
		    updated_at = now()
		WHERE id = $1`,
		nodeID, synthesis, confidence,
	)
	if err != nil {
		return fmt.Errorf("merge node %s: %w", nodeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merge node %s: not found", nodeID)
	}
	return nil
}

// CountNodes returns how many nodes the workspace holds.
func (s *GraphDBStorage) CountNodes(ctx context.Context, workspaceID string) (int, error) {
	var count int
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM kg_nodes WHERE workspace_id = $1`, workspaceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return count, nil
}
