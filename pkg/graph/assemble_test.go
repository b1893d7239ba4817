package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/position"
)

func basisVec(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis] = 1
	return v
}

func singleNodeTree(name string) *common.Node {
	return &common.Node{
		ID:                ChildID(name, "", 0),
		Name:              name,
		Synthesis:         "A synthesis of " + name + ".",
		Level:             0,
		Type:              common.NodeTypeDomain,
		EvidencePositions: []position.Range{{Start: 0, End: 0}},
		Evidence: []position.Content{{
			Text:           strings.Repeat(name+" evidence. ", 10),
			Range:          position.Range{Start: 0, End: 0},
			ParagraphCount: 1,
			Normalized:     true,
		}},
	}
}

func TestCreateOrMergeMonotonic(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	stub := &stubAIClient{
		embeddings: map[string][]float32{"Thermodynamics": basisVec(4, 0)},
	}
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})

	cache, err := g.BuildEmbeddingCache(ctx, []string{"Thermodynamics"}, stub)
	if err != nil {
		t.Fatal(err)
	}

	const runs = 5
	for i := 0; i < runs; i++ {
		tree := singleNodeTree("Thermodynamics")
		stats, err := g.AssembleHierarchy(ctx, "ws-1", tree, "doc-1", "Document One", cache, storage)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if i == 0 && stats.NodesCreated != 1 {
			t.Errorf("first run created %d nodes, want 1", stats.NodesCreated)
		}
		if i > 0 && stats.NodesMerged != 1 {
			t.Errorf("run %d merged %d nodes, want 1", i, stats.NodesMerged)
		}
	}

	nodes, _ := storage.ListWorkspaceNodes(ctx, "ws-1")
	if len(nodes) != 1 {
		t.Fatalf("workspace holds %d nodes after %d runs, want exactly 1", len(nodes), runs)
	}
	if nodes[0].SourceCount != runs {
		t.Errorf("source_count = %d, want %d", nodes[0].SourceCount, runs)
	}
	if len(storage.evidence) != runs {
		t.Errorf("evidence records = %d, want %d", len(storage.evidence), runs)
	}
}

func TestCreateOrMergeCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	stub := &stubAIClient{
		embeddings: map[string][]float32{
			"Heat Transfer": basisVec(4, 0),
			"HEAT TRANSFER": basisVec(4, 0),
		},
	}
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})

	for _, name := range []string{"Heat Transfer", "HEAT TRANSFER"} {
		cache, err := g.BuildEmbeddingCache(ctx, []string{name}, stub)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.AssembleHierarchy(ctx, "ws-1", singleNodeTree(name), "doc", "Doc", cache, storage); err != nil {
			t.Fatal(err)
		}
	}

	nodes, _ := storage.ListWorkspaceNodes(ctx, "ws-1")
	if len(nodes) != 1 {
		t.Fatalf("case variants produced %d nodes, want 1", len(nodes))
	}
	if nodes[0].Name != "Heat Transfer" {
		t.Errorf("persisted name %q, want the first-seen casing", nodes[0].Name)
	}
	if nodes[0].SourceCount != 2 {
		t.Errorf("source_count = %d, want 2", nodes[0].SourceCount)
	}
}

func TestAssembleEdgesByLevelPair(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()

	concept := singleNodeTree("Convection")
	concept.Level, concept.Type = 2, common.NodeTypeConcept
	category := singleNodeTree("Heat Transfer")
	category.Level, category.Type = 1, common.NodeTypeCategory
	category.Children = []*common.Node{concept}
	domain := singleNodeTree("Physics")
	domain.Children = []*common.Node{category}

	stub := &stubAIClient{
		embeddings: map[string][]float32{
			"Physics":       basisVec(4, 0),
			"Heat Transfer": basisVec(4, 1),
			"Convection":    basisVec(4, 2),
		},
	}
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})
	cache, err := g.BuildEmbeddingCache(ctx, CollectNames(domain), stub)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := g.AssembleHierarchy(ctx, "ws-1", domain, "doc", "Doc", cache, storage)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NodesCreated != 3 {
		t.Errorf("created %d nodes, want 3", stats.NodesCreated)
	}
	if stats.EdgesCreated != 2 {
		t.Errorf("created %d edges, want 2", stats.EdgesCreated)
	}

	kinds := map[string]int{}
	for edge := range storage.edges {
		parts := strings.Split(edge, "|")
		kinds[parts[2]]++
	}
	if kinds[common.EdgeHasCategory] != 1 || kinds[common.EdgeHasConcept] != 1 {
		t.Errorf("edge kinds %v, want one HAS_CATEGORY and one HAS_CONCEPT", kinds)
	}
}

func TestAssembleSkipsNodesWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()

	category := singleNodeTree("Embedded Category")
	category.Level, category.Type = 1, common.NodeTypeCategory
	domain := singleNodeTree("Unembedded Domain")
	domain.Children = []*common.Node{category}

	// Only the category has a usable vector; the domain degrades to a
	// zero vector in the cache.
	stub := &stubAIClient{
		embeddings: map[string][]float32{"Embedded Category": basisVec(4, 1)},
	}
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})
	cache, err := g.BuildEmbeddingCache(ctx, CollectNames(domain), stub)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := g.AssembleHierarchy(ctx, "ws-1", domain, "doc", "Doc", cache, storage)
	if err != nil {
		t.Fatal(err)
	}

	if stats.NodesSkipped != 1 {
		t.Errorf("skipped %d nodes, want 1", stats.NodesSkipped)
	}
	if stats.NodesCreated != 1 {
		t.Errorf("created %d nodes, want 1 (the embedded child)", stats.NodesCreated)
	}
	if stats.EdgesCreated != 0 {
		t.Errorf("created %d edges, want 0: a skipped parent is not linked", stats.EdgesCreated)
	}
	nodes, _ := storage.ListWorkspaceNodes(ctx, "ws-1")
	if len(nodes) != 1 || nodes[0].Name != "Embedded Category" {
		t.Errorf("persisted nodes %v, want only the embedded category", nodes)
	}
}

func TestEmbeddingCacheDedupe(t *testing.T) {
	ctx := context.Background()
	stub := &stubAIClient{
		embeddings: map[string][]float32{"Alpha": basisVec(4, 0)},
	}
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})

	cache, err := g.BuildEmbeddingCache(ctx, []string{"Alpha", "alpha", " ALPHA ", "", "Beta"}, stub)
	if err != nil {
		t.Fatal(err)
	}

	if cache.Len() != 2 {
		t.Errorf("cache holds %d names, want 2 after case-insensitive dedupe", cache.Len())
	}
	if _, ok := cache.Lookup("ALPHA"); !ok {
		t.Error("expected a usable vector for any casing of Alpha")
	}
	// Beta never embedded: zero vector, present but unusable.
	if vec, ok := cache.Lookup("Beta"); ok {
		t.Error("expected Beta's zero vector to be unusable for matching")
	} else if len(vec) != 4 {
		t.Errorf("fallback vector has dimension %d, want 4", len(vec))
	}
}
