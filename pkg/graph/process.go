package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"
)

var errNilAIClient = errors.New("ai client is nil")

// ProcessDocumentParams carries one document through the full pipeline.
type ProcessDocumentParams struct {
	WorkspaceID  string
	SourceID     string
	DocumentName string
	Paragraphs   []string
}

// ProcessDocument runs the full pipeline for one document: skeleton
// structuring, recursive expansion, embedding the candidate names, and
// assembly into the shared workspace graph. Partial success is the
// expected common case; the returned stats describe what actually
// happened even when branches terminated early.
func (g *HierarchyClient) ProcessDocument(
	ctx context.Context,
	params ProcessDocumentParams,
	aiClient ai.GraphAIClient,
	storeClient store.GraphStorage,
) (*common.ProcessStats, error) {
	if aiClient == nil {
		return nil, errNilAIClient
	}
	if storeClient == nil {
		return nil, fmt.Errorf("store client is nil")
	}
	if len(params.Paragraphs) == 0 {
		return nil, fmt.Errorf("document %q has no paragraphs", params.DocumentName)
	}

	logger.Info("[Graph] Processing document",
		"document", params.DocumentName,
		"workspace", params.WorkspaceID,
		"paragraphs", len(params.Paragraphs))

	skeleton, err := ai.CallSkeletonAI(ctx, params.DocumentName, params.Paragraphs, aiClient, g.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to structure document: %w", err)
	}

	root := TreeFromSkeleton(skeleton, params.Paragraphs)
	if root == nil {
		return nil, fmt.Errorf("empty skeleton for document %q", params.DocumentName)
	}

	expandRes := g.ExpandTree(ctx, root, params.Paragraphs, aiClient)
	stats := &common.ProcessStats{
		ExpansionErrors: expandRes.Errors,
		ReasoningCalls:  expandRes.ReasoningCalls,
		TreeNodes:       root.Count(),
		MaxDepthReached: root.MaxDepth(),
	}
	logger.Info("[Graph] Expansion finished",
		"tree_nodes", stats.TreeNodes,
		"max_depth", stats.MaxDepthReached,
		"reasoning_calls", stats.ReasoningCalls,
		"errors", stats.ExpansionErrors)

	// A cancelled run still reports what the tree looked like.
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}

	cache, err := g.BuildEmbeddingCache(ctx, CollectNames(root), aiClient)
	if err != nil {
		return stats, fmt.Errorf("failed to build embedding cache: %w", err)
	}

	assembleStats, err := g.AssembleHierarchy(
		ctx, params.WorkspaceID, root, params.SourceID, params.DocumentName, cache, storeClient,
	)
	if assembleStats != nil {
		stats.Assemble = *assembleStats
	}
	if err != nil {
		return stats, fmt.Errorf("failed to assemble hierarchy: %w", err)
	}

	logger.Info("[Graph] Document processed",
		"document", params.DocumentName,
		"created", stats.Assemble.NodesCreated,
		"merged", stats.Assemble.NodesMerged)
	return stats, nil
}
