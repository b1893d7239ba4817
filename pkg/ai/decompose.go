package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/position"
)

const (
	// DefaultChildrenCount is how many children a decomposition requests.
	DefaultChildrenCount = 3
	// decomposeMaxTokens bounds the parent evidence included in a prompt.
	decomposeMaxTokens = 6000
	defaultEncoder     = "o200k_base"
)

// DecomposeChild is one proposed child concept in a decomposition reply.
// Evidence positions are inclusive [start, end] pairs relative to the
// parent's own numbered evidence paragraphs.
type DecomposeChild struct {
	Name              string   `json:"name" jsonschema_description:"Short distinctive name of the child concept"`
	Synthesis         string   `json:"synthesis" jsonschema_description:"One to three sentence synthesis of the child concept"`
	EvidencePositions [][]int  `json:"evidence_positions" jsonschema_description:"Inclusive [start,end] paragraph index pairs into the parent's numbered evidence paragraphs"`
	KeyClaims         []string `json:"key_claims" jsonschema_description:"Up to three key claims made by the evidence, as plain text"`
	QuestionsRaised   []string `json:"questions_raised" jsonschema_description:"Up to three open questions the evidence raises, as plain text"`
}

// DecompositionResponse is the structured reply of one decomposition call.
// The model may set StopExpansion instead of returning children.
type DecompositionResponse struct {
	StopExpansion bool             `json:"stop_expansion" jsonschema_description:"True when the evidence cannot support at least two distinct children"`
	StopReason    string           `json:"stop_reason" jsonschema_description:"Short reason when stop_expansion is true"`
	Children      []DecomposeChild `json:"children" jsonschema_description:"Proposed child concepts"`
}

// DecomposeRequest describes the parent node being decomposed.
type DecomposeRequest struct {
	ParentName       string
	ParentSynthesis  string
	ParentParagraphs []string
	CurrentLevel     int
	TargetLevel      int
	ChildrenCount    int
}

// CallDecomposeAI asks the reasoning collaborator to decompose a parent
// node's evidence into child concepts. The parent's evidence paragraphs
// are numbered in the prompt so the reply's relative positions address
// them directly; the block is token-bounded before sending.
func CallDecomposeAI(
	ctx context.Context,
	req DecomposeRequest,
	aiClient GraphAIClient,
	maxRetries int,
) (*DecompositionResponse, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(req.ParentParagraphs) == 0 {
		return nil, fmt.Errorf("no parent paragraphs to decompose")
	}
	childrenCount := req.ChildrenCount
	if childrenCount <= 0 {
		childrenCount = DefaultChildrenCount
	}

	encoder := util.GetEnvString("AI_TOKEN_ENCODER", defaultEncoder)
	maxTokens := int(util.GetEnvNumeric("AI_DECOMPOSE_MAX_TOKENS", decomposeMaxTokens))
	block := TruncateToTokens(numberParagraphs(req.ParentParagraphs), encoder, maxTokens)

	prompt := fmt.Sprintf(
		DecomposePrompt,
		NormalizeName(req.ParentName),
		req.CurrentLevel,
		req.TargetLevel,
		NormalizeName(req.ParentSynthesis),
		block,
		childrenCount,
	)

	var res DecompositionResponse
	err := util.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		return aiClient.GenerateCompletionWithFormat(
			ctx, "decompose_concept", "Decompose a concept node's evidence into child concepts.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// PositionsFromPairs converts wire-format [start,end] pairs into ranges.
// A one-element pair addresses a single paragraph; empty pairs are
// dropped, extra elements ignored.
func PositionsFromPairs(pairs [][]int) []position.Range {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]position.Range, 0, len(pairs))
	for _, pair := range pairs {
		switch len(pair) {
		case 0:
			continue
		case 1:
			out = append(out, position.Range{Start: pair[0], End: pair[0]})
		default:
			out = append(out, position.Range{Start: pair[0], End: pair[1]})
		}
	}
	return out
}

func numberParagraphs(paragraphs []string) string {
	var b strings.Builder
	for i, p := range paragraphs {
		fmt.Fprintf(&b, "[%d] %s\n", i, strings.TrimSpace(p))
	}
	return b.String()
}
