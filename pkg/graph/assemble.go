package graph

import (
	"context"
	"fmt"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// assembler carries the per-run state of one hierarchy assembly: the
// in-memory view of the workspace's existing nodes, grown as new nodes
// are created so later candidates match against them.
type assembler struct {
	storeClient store.GraphStorage
	cache       *EmbeddingCache
	workspaceID string
	sourceID    string
	sourceName  string
	existing    []common.GraphNode
	stats       common.AssembleStats
}

// AssembleHierarchy walks the expanded tree top-down, deciding per node
// whether it is new to the workspace or a restatement of an existing
// concept, and wiring parent→child edges keyed by the level pair. Nodes
// without a usable embedding are skipped entirely: not created, not
// linked. Their subtrees are still walked.
func (g *HierarchyClient) AssembleHierarchy(
	ctx context.Context,
	workspaceID string,
	root *common.Node,
	sourceID string,
	sourceName string,
	cache *EmbeddingCache,
	storeClient store.GraphStorage,
) (*common.AssembleStats, error) {
	if storeClient == nil {
		return nil, fmt.Errorf("store client is nil")
	}
	if root == nil {
		return &common.AssembleStats{}, nil
	}

	existing, err := storeClient.ListWorkspaceNodes(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace nodes: %w", err)
	}

	a := &assembler{
		storeClient: storeClient,
		cache:       cache,
		workspaceID: workspaceID,
		sourceID:    sourceID,
		sourceName:  sourceName,
		existing:    existing,
	}

	if err := a.assembleNode(ctx, root, ""); err != nil {
		return &a.stats, err
	}

	count, err := storeClient.CountNodes(ctx, workspaceID)
	if err != nil {
		return &a.stats, fmt.Errorf("failed to count workspace nodes: %w", err)
	}
	a.stats.WorkspaceNodes = count

	logger.Info("[Graph][Assemble] Hierarchy assembled",
		"workspace", workspaceID,
		"created", a.stats.NodesCreated,
		"merged", a.stats.NodesMerged,
		"skipped", a.stats.NodesSkipped,
		"edges", a.stats.EdgesCreated,
		"workspace_nodes", a.stats.WorkspaceNodes)
	return &a.stats, nil
}

func (a *assembler) assembleNode(ctx context.Context, node *common.Node, parentPersistedID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	nodeID, err := a.createOrMerge(ctx, node)
	if err != nil {
		return err
	}

	if parentPersistedID != "" && nodeID != "" && parentPersistedID != nodeID {
		kind := common.EdgeKindForLevels(node.Level-1, node.Level)
		if err := a.storeClient.CreateEdge(ctx, a.workspaceID, parentPersistedID, nodeID, kind); err != nil {
			return err
		}
		a.stats.EdgesCreated++
	}

	for _, child := range node.Children {
		if err := a.assembleNode(ctx, child, nodeID); err != nil {
			return err
		}
	}
	return nil
}

// createOrMerge resolves one tree node against the workspace. It returns
// an empty id, without error, when the node cannot be persisted: blank
// name or no usable embedding.
func (a *assembler) createOrMerge(ctx context.Context, node *common.Node) (string, error) {
	name := ai.NormalizeName(node.Name)
	if name == "" {
		a.stats.NodesSkipped++
		return "", nil
	}
	embedding, ok := a.cache.Lookup(name)
	if !ok {
		logger.Debug("[Graph][Assemble] Skipping node without embedding", "name", name)
		a.stats.NodesSkipped++
		return "", nil
	}

	if match := FindBestMatch(a.existing, name, embedding); match != nil {
		synthesis := node.Synthesis
		if synthesis != "" {
			synthesis = fmt.Sprintf("[%s] %s", a.sourceName, synthesis)
		}
		if err := a.storeClient.MergeNode(ctx, match.ID, synthesis, 1.0); err != nil {
			return "", err
		}
		if err := a.appendEvidence(ctx, match.ID, node); err != nil {
			return "", err
		}
		a.stats.NodesMerged++
		logger.Debug("[Graph][Assemble] Merged into existing node",
			"name", name, "match", match.Name, "match_type", match.MatchType, "similarity", match.Similarity)
		return match.ID, nil
	}

	persisted := common.GraphNode{
		ID:              fmt.Sprintf("%s-%s", node.Type, gonanoid.Must()),
		WorkspaceID:     a.workspaceID,
		Type:            node.Type,
		Name:            name,
		Synthesis:       node.Synthesis,
		Level:           node.Level,
		SourceCount:     1,
		TotalConfidence: 1.0,
		Embedding:       embedding,
	}
	if err := a.storeClient.CreateNode(ctx, &persisted); err != nil {
		return "", err
	}
	if err := a.appendEvidence(ctx, persisted.ID, node); err != nil {
		return "", err
	}
	a.existing = append(a.existing, persisted)
	a.stats.NodesCreated++
	return persisted.ID, nil
}

func (a *assembler) appendEvidence(ctx context.Context, nodeID string, node *common.Node) error {
	concepts := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		if child.Name != "" {
			concepts = append(concepts, child.Name)
		}
	}

	err := a.storeClient.AppendEvidence(ctx, []common.Evidence{{
		ID:         gonanoid.Must(),
		NodeID:     nodeID,
		SourceID:   a.sourceID,
		SourceName: a.sourceName,
		Text:       node.EvidenceText(),
		Confidence: 1.0,
		Concepts:   concepts,
		Claims:     node.KeyClaims,
		Questions:  node.QuestionsRaised,
	}})
	if err != nil {
		return err
	}
	a.stats.EvidenceCreated++
	return nil
}
