// Package graph builds multi-level concept hierarchies from paragraph
// sequences: recursive expansion of a shallow skeleton into a deep tree,
// then cascading semantic deduplication into a shared knowledge store.
package graph

// HierarchyClient is the main client for building concept hierarchies.
// It bounds recursion depth, fan-out width, and retry behavior for the
// whole pipeline.
//
// A HierarchyClient should be created using NewHierarchyClient.
type HierarchyClient struct {
	targetDepth      int
	childrenCount    int
	parallelChildren int
	maxRetries       int
	minEvidenceChars int
	embedBatchSize   int
}

// NewHierarchyClientParams defines the configuration parameters for
// creating a new HierarchyClient.
//
// TargetDepth bounds recursion regardless of content; nodes at that
// level become terminal without a reasoning call. ParallelChildren
// controls how many child subtrees expand concurrently per node.
// MinEvidenceChars is the floor under which a node's resolved evidence
// is considered too thin to decompose.
type NewHierarchyClientParams struct {
	TargetDepth      int
	ChildrenCount    int
	ParallelChildren int
	MaxRetries       int
	MinEvidenceChars int
	EmbedBatchSize   int
}

// NewHierarchyClient creates and returns a new HierarchyClient configured
// with the provided parameters. Zero values fall back to defaults.
func NewHierarchyClient(params NewHierarchyClientParams) (*HierarchyClient, error) {
	g := &HierarchyClient{
		targetDepth:      params.TargetDepth,
		childrenCount:    params.ChildrenCount,
		parallelChildren: params.ParallelChildren,
		maxRetries:       params.MaxRetries,
		minEvidenceChars: params.MinEvidenceChars,
		embedBatchSize:   params.EmbedBatchSize,
	}
	if g.targetDepth <= 0 {
		g.targetDepth = 3
	}
	if g.childrenCount <= 0 {
		g.childrenCount = 3
	}
	if g.parallelChildren <= 0 {
		g.parallelChildren = 4
	}
	if g.maxRetries <= 0 {
		g.maxRetries = 3
	}
	if g.minEvidenceChars <= 0 {
		g.minEvidenceChars = 500
	}
	if g.embedBatchSize <= 0 {
		g.embedBatchSize = 32
	}
	return g, nil
}
