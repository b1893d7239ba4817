package graph

import (
	"context"
	"sync/atomic"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/position"

	"golang.org/x/sync/errgroup"
)

// Expansion state machine. Every node moves strictly forward through
// these states; Terminal is absorbing.
type expandState int

const (
	statePending expandState = iota
	stateExtracting
	stateAwaitingDecomposition
	stateValidating
	stateExpanding
	stateTerminal
)

func (s expandState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateExtracting:
		return "extracting"
	case stateAwaitingDecomposition:
		return "awaiting_decomposition"
	case stateValidating:
		return "validating"
	case stateExpanding:
		return "expanding"
	case stateTerminal:
		return "terminal"
	}
	return "unknown"
}

// ExpandResult aggregates counters from one expansion run. The counters
// are written by concurrent subtree tasks and read after the join.
type ExpandResult struct {
	ReasoningCalls int
	Errors         int
}

type expandCounters struct {
	reasoningCalls atomic.Int64
	errors         atomic.Int64
}

// ExpandTree grows the working tree rooted at root by recursively
// decomposing each node's evidence into children until a termination
// condition fires: evidence too thin, the collaborator signals stop or
// returns fewer than two children, the target depth is reached, or the
// collaborator call fails. Children of one node expand concurrently;
// a node finishes only after every child subtree has finished. Errors
// are isolated per node and counted, never propagated upward.
func (g *HierarchyClient) ExpandTree(
	ctx context.Context,
	root *common.Node,
	paragraphs []string,
	aiClient ai.GraphAIClient,
) ExpandResult {
	counters := &expandCounters{}
	if root != nil {
		g.expandNode(ctx, root, paragraphs, aiClient, counters)
	}
	return ExpandResult{
		ReasoningCalls: int(counters.reasoningCalls.Load()),
		Errors:         int(counters.errors.Load()),
	}
}

func (g *HierarchyClient) expandNode(
	ctx context.Context,
	node *common.Node,
	paragraphs []string,
	aiClient ai.GraphAIClient,
	counters *expandCounters,
) {
	state := stateExtracting

	if ctx.Err() != nil {
		terminal(node, state, "cancelled")
		return
	}

	// Extracting: resolve the node's own evidence. Children built by a
	// parent's Expanding step arrive already resolved.
	if len(node.Evidence) == 0 {
		if len(node.EvidencePositions) == 0 {
			terminal(node, state, "no evidence positions")
			return
		}
		node.Evidence = position.Extract(node.EvidencePositions, paragraphs, node.ParentRange)
	}

	// Skeleton nodes come in with children already attached; their own
	// decomposition is done, only the fan-out below remains.
	if len(node.Children) == 0 {
		evidenceText := node.EvidenceText()
		if len(evidenceText) < g.minEvidenceChars {
			terminal(node, state, "content below minimum length")
			return
		}
		if node.Level >= g.targetDepth {
			terminal(node, state, "target depth reached")
			return
		}

		state = stateAwaitingDecomposition
		parentParagraphs := position.SplitParagraphs(evidenceText)

		counters.reasoningCalls.Add(1)
		res, err := ai.CallDecomposeAI(ctx, ai.DecomposeRequest{
			ParentName:       node.Name,
			ParentSynthesis:  node.Synthesis,
			ParentParagraphs: parentParagraphs,
			CurrentLevel:     node.Level,
			TargetLevel:      g.targetDepth,
			ChildrenCount:    g.childrenCount,
		}, aiClient, g.maxRetries)
		if err != nil {
			counters.errors.Add(1)
			logger.Warn("[Graph][Expand] Decomposition failed",
				"node", node.Name, "level", node.Level, "error", err)
			terminal(node, state, "collaborator error")
			return
		}

		state = stateValidating
		if res.StopExpansion || len(res.Children) < 2 {
			reason := res.StopReason
			if reason == "" {
				reason = "expansion stopped"
			}
			terminal(node, state, reason)
			return
		}

		state = stateExpanding
		parentRange, ok := node.EvidenceRange()
		if !ok {
			terminal(node, state, "no evidence range")
			return
		}
		paragraphCount := len(parentParagraphs)

		for i, child := range res.Children {
			name := ai.NormalizeName(child.Name)
			if name == "" {
				continue
			}
			relative := position.Clamp(ai.PositionsFromPairs(child.EvidencePositions), paragraphCount)
			if len(relative) == 0 {
				continue
			}
			pr := parentRange
			childNode := &common.Node{
				ID:                ChildID(name, node.ID, i),
				Name:              name,
				Synthesis:         child.Synthesis,
				Level:             node.Level + 1,
				Type:              common.TypeForLevel(node.Level + 1),
				EvidencePositions: relative,
				ParentRange:       &pr,
				KeyClaims:         child.KeyClaims,
				QuestionsRaised:   child.QuestionsRaised,
				ParentID:          node.ID,
			}
			childNode.Evidence = position.Extract(relative, paragraphs, &pr)
			node.Children = append(node.Children, childNode)
		}
	}

	// Fan out over the children, then join before this node is done.
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelChildren)
	for _, child := range node.Children {
		c := child
		eg.Go(func() error {
			g.expandNode(gCtx, c, paragraphs, aiClient, counters)
			return nil
		})
	}
	_ = eg.Wait()

	terminal(node, stateTerminal, "")
}

func terminal(node *common.Node, from expandState, reason string) {
	if reason != "" {
		logger.Debug("[Graph][Expand] Node terminal",
			"node", node.Name, "level", node.Level, "from", from.String(), "reason", reason)
	}
}
