package ai

import (
	"context"
	"fmt"

	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/common"
)

const defaultMaxCategories = 4

type skeletonWireNode struct {
	Name              string             `json:"name" jsonschema_description:"Short distinctive name of the node"`
	Synthesis         string             `json:"synthesis" jsonschema_description:"One to three sentence synthesis"`
	EvidencePositions [][]int            `json:"evidence_positions" jsonschema_description:"Inclusive [start,end] paragraph index pairs into the document"`
	Children          []skeletonWireNode `json:"children" jsonschema_description:"Child nodes, empty at the deepest level"`
}

type skeletonResponse struct {
	Domain skeletonWireNode `json:"domain" jsonschema_description:"The document's overarching domain with categories and concepts beneath it"`
}

// CallSkeletonAI asks the reasoning collaborator for the shallow
// domain/category/concept skeleton of a document. All positions in the
// result are absolute paragraph indices.
func CallSkeletonAI(
	ctx context.Context,
	docName string,
	paragraphs []string,
	aiClient GraphAIClient,
	maxRetries int,
) (*common.SkeletonNode, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("ai client is nil")
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no paragraphs to structure")
	}

	encoder := util.GetEnvString("AI_TOKEN_ENCODER", defaultEncoder)
	maxTokens := int(util.GetEnvNumeric("AI_SKELETON_MAX_TOKENS", 12000))
	block := TruncateToTokens(numberParagraphs(paragraphs), encoder, maxTokens)
	maxCategories := int(util.GetEnvNumeric("AI_MAX_CATEGORIES", defaultMaxCategories))

	prompt := fmt.Sprintf(SkeletonPrompt, NormalizeName(docName), block, maxCategories)

	var res skeletonResponse
	err := util.RetryErrWithContext(ctx, maxRetries, func(ctx context.Context) error {
		return aiClient.GenerateCompletionWithFormat(
			ctx, "structure_document", "Build the top levels of a document's concept hierarchy.", prompt, &res,
		)
	})
	if err != nil {
		return nil, err
	}

	root := convertSkeleton(res.Domain)
	if root.Name == "" {
		return nil, fmt.Errorf("skeleton response missing domain name")
	}
	return &root, nil
}

func convertSkeleton(wire skeletonWireNode) common.SkeletonNode {
	node := common.SkeletonNode{
		Name:              NormalizeName(wire.Name),
		Synthesis:         wire.Synthesis,
		EvidencePositions: PositionsFromPairs(wire.EvidencePositions),
	}
	for _, child := range wire.Children {
		node.Children = append(node.Children, convertSkeleton(child))
	}
	return node
}
