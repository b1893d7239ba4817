package graph

import (
	"fmt"
	"hash/fnv"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/position"
)

// ChildID derives a stable node id from the child's name, its parent's
// id, and its sibling index. Repeated runs over the same document yield
// the same tree ids.
func ChildID(name, parentID string, siblingIndex int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%d", ai.NormalizeName(name), parentID, siblingIndex)
	return fmt.Sprintf("n-%016x", h.Sum64())
}

// TreeFromSkeleton converts a shallow skeleton into a working tree with
// resolved evidence. Skeleton positions are absolute, so every node gets
// a nil parent range; levels and types follow the skeleton's depth.
func TreeFromSkeleton(skeleton *common.SkeletonNode, paragraphs []string) *common.Node {
	if skeleton == nil {
		return nil
	}
	return skeletonNode(skeleton, paragraphs, "", 0, 0)
}

func skeletonNode(sk *common.SkeletonNode, paragraphs []string, parentID string, level, siblingIndex int) *common.Node {
	node := &common.Node{
		ID:                ChildID(sk.Name, parentID, siblingIndex),
		Name:              ai.NormalizeName(sk.Name),
		Synthesis:         sk.Synthesis,
		Level:             level,
		Type:              common.TypeForLevel(level),
		EvidencePositions: position.Clamp(sk.EvidencePositions, len(paragraphs)),
		ParentID:          parentID,
	}
	node.Evidence = position.Extract(node.EvidencePositions, paragraphs, nil)

	for i := range sk.Children {
		child := skeletonNode(&sk.Children[i], paragraphs, node.ID, level+1, i)
		node.Children = append(node.Children, child)
	}
	return node
}

// CollectNames gathers every node name in the subtree, in walk order.
func CollectNames(root *common.Node) []string {
	if root == nil {
		return nil
	}
	var names []string
	root.Walk(func(n *common.Node) {
		if n.Name != "" {
			names = append(names, n.Name)
		}
	})
	return names
}
