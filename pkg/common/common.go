// Package common holds the shared data model for the concept hierarchy
// pipeline: the working tree produced by expansion and the persisted
// knowledge-graph records produced by assembly.
package common

import (
	"time"

	"github.com/lattice-kg/lattice/pkg/position"
)

// Node type tags, assigned from the node's level in the hierarchy.
const (
	NodeTypeDomain     = "domain"
	NodeTypeCategory   = "category"
	NodeTypeConcept    = "concept"
	NodeTypeSubconcept = "subconcept"
	NodeTypeDetail     = "detail"
)

// TypeForLevel maps a hierarchy level to its node type tag.
// Levels beyond subconcept are all details.
func TypeForLevel(level int) string {
	switch level {
	case 0:
		return NodeTypeDomain
	case 1:
		return NodeTypeCategory
	case 2:
		return NodeTypeConcept
	case 3:
		return NodeTypeSubconcept
	default:
		return NodeTypeDetail
	}
}

// Node is one element of the working hierarchy tree built by expansion.
// A node owns its children; the only upward reference is the ParentID
// string kept for tracing. Nodes are created by the expansion engine and
// never mutated after their subtree has finished expanding.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Synthesis string `json:"synthesis"`
	Level     int    `json:"level"`
	Type      string `json:"type"`

	// EvidencePositions address this node's evidence. They are relative
	// to ParentRange when ParentRange is non-nil, absolute otherwise.
	EvidencePositions []position.Range `json:"evidence_positions"`
	// ParentRange is the absolute document range of the parent's own
	// evidence, the base the relative positions resolve against.
	ParentRange *position.Range `json:"parent_range,omitempty"`

	Evidence        []position.Content `json:"evidence"`
	KeyClaims       []string           `json:"key_claims,omitempty"`
	QuestionsRaised []string           `json:"questions_raised,omitempty"`

	ParentID string  `json:"parent_id,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// EvidenceText joins the node's resolved evidence content.
func (n *Node) EvidenceText() string {
	switch len(n.Evidence) {
	case 0:
		return ""
	case 1:
		return n.Evidence[0].Text
	}
	total := 0
	for _, c := range n.Evidence {
		total += len(c.Text) + len(position.ParagraphSeparator)
	}
	buf := make([]byte, 0, total)
	for i, c := range n.Evidence {
		if i > 0 {
			buf = append(buf, position.ParagraphSeparator...)
		}
		buf = append(buf, c.Text...)
	}
	return string(buf)
}

// EvidenceRange returns the absolute range spanning all of the node's
// resolved evidence, and false when the node has none.
func (n *Node) EvidenceRange() (position.Range, bool) {
	if len(n.Evidence) == 0 {
		return position.Range{}, false
	}
	span := n.Evidence[0].Range
	for _, c := range n.Evidence[1:] {
		if c.Range.Start < span.Start {
			span.Start = c.Range.Start
		}
		if c.Range.End > span.End {
			span.End = c.Range.End
		}
	}
	return span, true
}

// Walk visits the node and every descendant depth-first.
func (n *Node) Walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// MaxDepth returns the deepest level present in the subtree rooted at n.
func (n *Node) MaxDepth() int {
	deepest := 0
	n.Walk(func(node *Node) {
		if node.Level > deepest {
			deepest = node.Level
		}
	})
	return deepest
}

// SkeletonNode is one entry of the shallow hierarchy produced by the
// initial structuring call, before recursive expansion has run.
type SkeletonNode struct {
	Name              string           `json:"name"`
	Synthesis         string           `json:"synthesis"`
	EvidencePositions []position.Range `json:"evidence_positions"`
	Children          []SkeletonNode   `json:"children,omitempty"`
}

// GraphNode is the persisted form of a concept in the shared knowledge
// store. One GraphNode can accumulate evidence from many documents;
// merges append to Synthesis and bump SourceCount, never rewriting what
// earlier documents contributed.
type GraphNode struct {
	ID              string    `json:"id"`
	WorkspaceID     string    `json:"workspace_id"`
	Type            string    `json:"type"`
	Name            string    `json:"name"`
	Synthesis       string    `json:"synthesis"`
	Level           int       `json:"level"`
	SourceCount     int       `json:"source_count"`
	TotalConfidence float64   `json:"total_confidence"`
	Embedding       []float32 `json:"embedding,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Evidence is one append-only contribution record tying a GraphNode back
// to a source document.
type Evidence struct {
	ID         string   `json:"id"`
	NodeID     string   `json:"node_id"`
	SourceID   string   `json:"source_id"`
	SourceName string   `json:"source_name"`
	Text       string   `json:"text"`
	Page       int      `json:"page,omitempty"`
	Confidence float64  `json:"confidence"`
	Languages  []string `json:"languages,omitempty"`
	Concepts   []string `json:"concepts,omitempty"`
	Claims     []string `json:"claims,omitempty"`
	Questions  []string `json:"questions,omitempty"`
}

// Edge kinds between persisted nodes, keyed by the parent→child level pair.
const (
	EdgeHasCategory   = "HAS_CATEGORY"
	EdgeHasConcept    = "HAS_CONCEPT"
	EdgeHasSubconcept = "HAS_SUBCONCEPT"
)

// EdgeKindForLevels returns the relationship kind for a parent→child level
// pair. Unknown pairs fall back to the domain→category kind.
func EdgeKindForLevels(parentLevel, childLevel int) string {
	switch {
	case parentLevel == 0 && childLevel == 1:
		return EdgeHasCategory
	case parentLevel == 1 && childLevel == 2:
		return EdgeHasConcept
	case parentLevel == 2 && childLevel == 3:
		return EdgeHasSubconcept
	default:
		return EdgeHasCategory
	}
}

// AssembleStats summarizes one assembly pass over a hierarchy.
type AssembleStats struct {
	NodesCreated    int `json:"nodes_created"`
	NodesMerged     int `json:"nodes_merged"`
	NodesSkipped    int `json:"nodes_skipped"`
	EvidenceCreated int `json:"evidence_created"`
	EdgesCreated    int `json:"edges_created"`
	WorkspaceNodes  int `json:"workspace_nodes"`
}

// ProcessStats is the structured result of one full pipeline run. Partial
// success is the common case: branches that terminated early still count.
type ProcessStats struct {
	Assemble        AssembleStats `json:"assemble"`
	ExpansionErrors int           `json:"expansion_errors"`
	ReasoningCalls  int           `json:"reasoning_calls"`
	TreeNodes       int           `json:"tree_nodes"`
	MaxDepthReached int           `json:"max_depth_reached"`
}
