package pgx

import (
	"context"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/store"
)

const evidenceChunk = 500

// AppendEvidence inserts evidence records in batches inside one
// transaction per chunk. Evidence is append-only; there is no update
// path.
func (s *GraphDBStorage) AppendEvidence(ctx context.Context, evidence []common.Evidence) error {
	if len(evidence) == 0 {
		return nil
	}

	return store.ChunkRange(len(evidence), evidenceChunk, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, ev := range evidence[start:end] {
			_, err := tx.Exec(ctx, `
				INSERT INTO kg_evidence
					(id, node_id, source_id, source_name, content, page,
					 confidence, languages, concepts, claims, questions)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				ev.ID, ev.NodeID, ev.SourceID, ev.SourceName, ev.Text, ev.Page,
				ev.Confidence, ev.Languages, ev.Concepts, ev.Claims, ev.Questions,
			)
			if err != nil {
				return fmt.Errorf("insert evidence for node %s: %w", ev.NodeID, err)
			}
		}
		return tx.Commit(ctx)
	})
}
