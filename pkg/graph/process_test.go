package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/lattice-kg/lattice/pkg/ai"
)

const stubSkeleton = `{
	"domain": {
		"name": "Climate Science",
		"synthesis": "The document's overarching domain.",
		"evidence_positions": [[0, 59]],
		"children": [
			{"name": "Atmospheric Physics", "synthesis": "Air and radiation.", "evidence_positions": [[0, 29]], "children": []},
			{"name": "Ocean Dynamics", "synthesis": "Currents and heat uptake.", "evidence_positions": [[30, 59]], "children": []}
		]
	}
}`

func TestProcessDocument(t *testing.T) {
	paragraphs := testParagraphs(60)
	storage := newMemStorage()
	stub := &stubAIClient{
		skeletonJSON: stubSkeleton,
		embedAll:     true,
		dim:          16,
		// call%2 keeps the two categories' concept sets distinct within a
		// pass while staying identical across repeated passes.
		decompose: func(call int, out *ai.DecompositionResponse) error {
			for i := 0; i < 3; i++ {
				out.Children = append(out.Children, ai.DecomposeChild{
					Name:              fmt.Sprintf("Concept %d-%d", call%2, i),
					Synthesis:         "stub synthesis",
					EvidencePositions: [][]int{{i * 5, i*5 + 4}},
				})
			}
			return nil
		},
	}

	g, err := NewHierarchyClient(NewHierarchyClientParams{TargetDepth: 2})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := g.ProcessDocument(context.Background(), ProcessDocumentParams{
		WorkspaceID:  "ws-1",
		SourceID:     "doc-1",
		DocumentName: "climate.pdf",
		Paragraphs:   paragraphs,
	}, stub, storage)
	if err != nil {
		t.Fatal(err)
	}

	if stats.TreeNodes != 9 {
		t.Errorf("tree nodes = %d, want 9", stats.TreeNodes)
	}
	if stats.MaxDepthReached != 2 {
		t.Errorf("max depth = %d, want 2", stats.MaxDepthReached)
	}
	if stats.ReasoningCalls != 2 {
		t.Errorf("reasoning calls = %d, want 2", stats.ReasoningCalls)
	}
	if stats.ExpansionErrors != 0 {
		t.Errorf("expansion errors = %d, want 0", stats.ExpansionErrors)
	}
	if stats.Assemble.NodesCreated != 9 {
		t.Errorf("nodes created = %d, want 9", stats.Assemble.NodesCreated)
	}
	if stats.Assemble.NodesMerged != 0 {
		t.Errorf("nodes merged = %d, want 0 on an empty workspace", stats.Assemble.NodesMerged)
	}
	if stats.Assemble.EdgesCreated != 8 {
		t.Errorf("edges created = %d, want 8", stats.Assemble.EdgesCreated)
	}
	if stats.Assemble.WorkspaceNodes != 9 {
		t.Errorf("workspace nodes = %d, want 9", stats.Assemble.WorkspaceNodes)
	}

	// A second pass over the same document merges everything.
	stats2, err := g.ProcessDocument(context.Background(), ProcessDocumentParams{
		WorkspaceID:  "ws-1",
		SourceID:     "doc-1",
		DocumentName: "climate.pdf",
		Paragraphs:   paragraphs,
	}, stub, storage)
	if err != nil {
		t.Fatal(err)
	}
	if stats2.Assemble.NodesCreated != 0 {
		t.Errorf("second pass created %d nodes, want 0", stats2.Assemble.NodesCreated)
	}
	if stats2.Assemble.NodesMerged != 9 {
		t.Errorf("second pass merged %d nodes, want 9", stats2.Assemble.NodesMerged)
	}
	if stats2.Assemble.WorkspaceNodes != 9 {
		t.Errorf("workspace nodes after second pass = %d, want still 9", stats2.Assemble.WorkspaceNodes)
	}
}

func TestProcessDocumentRejectsMissingCollaborators(t *testing.T) {
	g, _ := NewHierarchyClient(NewHierarchyClientParams{})
	params := ProcessDocumentParams{WorkspaceID: "ws", Paragraphs: []string{"one"}}

	if _, err := g.ProcessDocument(context.Background(), params, nil, newMemStorage()); err == nil {
		t.Error("expected error for nil ai client")
	}
	if _, err := g.ProcessDocument(context.Background(), params, &stubAIClient{}, nil); err == nil {
		t.Error("expected error for nil store client")
	}
	if _, err := g.ProcessDocument(context.Background(), ProcessDocumentParams{WorkspaceID: "ws"}, &stubAIClient{}, newMemStorage()); err == nil {
		t.Error("expected error for empty paragraphs")
	}
}
