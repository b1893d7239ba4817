package graph

import (
	"math"
	"strings"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
)

// Match describes a deduplication hit against an existing persisted node.
type Match struct {
	ID         string
	Name       string
	Similarity float64
	MatchType  string
}

// Match type tags, from strongest to weakest.
const (
	MatchExact    = "exact"
	MatchVeryHigh = "very_high"
	MatchHigh     = "high"
	MatchMedium   = "medium"
)

// The similarity cascade: stages are tried in this order and the first
// stage with a hit wins, regardless of what a later stage would score.
var matchStages = []struct {
	threshold float64
	matchType string
}{
	{0.90, MatchVeryHigh},
	{0.80, MatchHigh},
	{0.70, MatchMedium},
}

// FindBestMatch decides whether a candidate concept restates one of the
// existing nodes. Exact name equality (case-insensitive) wins outright;
// otherwise cosine similarity is tested at descending thresholds, and
// the first threshold stage with at least one candidate returns its
// highest-scoring one. Returns nil when nothing matches.
func FindBestMatch(existing []common.GraphNode, name string, embedding []float32) *Match {
	name = ai.NormalizeName(name)
	if name == "" {
		return nil
	}

	for i := range existing {
		if strings.EqualFold(existing[i].Name, name) {
			return &Match{
				ID:         existing[i].ID,
				Name:       existing[i].Name,
				Similarity: 1.0,
				MatchType:  MatchExact,
			}
		}
	}

	if len(embedding) == 0 {
		return nil
	}

	similarities := make([]float64, len(existing))
	for i := range existing {
		similarities[i] = CosineSimilarity(embedding, existing[i].Embedding)
	}

	for _, stage := range matchStages {
		bestIdx := -1
		bestSim := stage.threshold
		for i, sim := range similarities {
			if sim >= bestSim && (bestIdx < 0 || sim > similarities[bestIdx]) {
				bestIdx = i
				bestSim = sim
			}
		}
		if bestIdx >= 0 {
			return &Match{
				ID:         existing[bestIdx].ID,
				Name:       existing[bestIdx].Name,
				Similarity: similarities[bestIdx],
				MatchType:  stage.matchType,
			}
		}
	}
	return nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
