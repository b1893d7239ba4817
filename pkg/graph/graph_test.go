package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/common"
	"github.com/lattice-kg/lattice/pkg/store"
)

// stubAIClient is a deterministic collaborator for tests. Decomposition
// replies come from the decompose hook; embeddings come from a fixed
// name→vector map, zero vectors for anything unmapped.
type stubAIClient struct {
	mu             sync.Mutex
	decomposeCalls int
	decompose      func(call int, out *ai.DecompositionResponse) error
	skeletonJSON   string
	embeddings     map[string][]float32
	embedAll       bool
	axes           map[string]int
	dim            int
}

func (s *stubAIClient) GenerateCompletion(context.Context, string, ...ai.GenerateOption) (string, error) {
	return "", nil
}

func (s *stubAIClient) GenerateCompletionWithFormat(
	_ context.Context, name, _, _ string, out any, _ ...ai.GenerateOption,
) error {
	if name == "structure_document" {
		if s.skeletonJSON == "" {
			return fmt.Errorf("no stub skeleton configured")
		}
		return json.Unmarshal([]byte(s.skeletonJSON), out)
	}
	if name != "decompose_concept" {
		return fmt.Errorf("unexpected structured call %q", name)
	}
	res, ok := out.(*ai.DecompositionResponse)
	if !ok {
		return fmt.Errorf("unexpected output type %T", out)
	}
	s.mu.Lock()
	call := s.decomposeCalls
	s.decomposeCalls++
	s.mu.Unlock()
	if s.decompose == nil {
		res.StopExpansion = true
		res.StopReason = "no stub decomposition configured"
		return nil
	}
	return s.decompose(call, res)
}

func (s *stubAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	vecs, err := s.GenerateEmbeddings(ctx, [][]byte{input})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubAIClient) GenerateEmbeddings(_ context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		if vec, ok := s.embeddings[string(input)]; ok {
			out[i] = vec
			continue
		}
		if s.embedAll {
			out[i] = s.axisVector(string(input))
			continue
		}
		out[i] = make([]float32, s.EmbeddingDimensions())
	}
	return out, nil
}

// axisVector hands each distinct name its own orthogonal unit vector.
func (s *stubAIClient) axisVector(name string) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.axes == nil {
		s.axes = map[string]int{}
	}
	axis, ok := s.axes[name]
	if !ok {
		axis = len(s.axes) % s.EmbeddingDimensions()
		s.axes[name] = axis
	}
	vec := make([]float32, s.EmbeddingDimensions())
	vec[axis] = 1
	return vec
}

func (s *stubAIClient) EmbeddingDimensions() int {
	if s.dim > 0 {
		return s.dim
	}
	return 4
}

func (s *stubAIClient) ResetMetrics() {}

func (s *stubAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func (s *stubAIClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decomposeCalls
}

// memStorage is an in-memory store.GraphStorage for assembly tests.
type memStorage struct {
	mu       sync.Mutex
	nodes    map[string]*common.GraphNode
	order    []string
	evidence []common.Evidence
	edges    map[string]struct{}
}

func newMemStorage() *memStorage {
	return &memStorage{
		nodes: map[string]*common.GraphNode{},
		edges: map[string]struct{}{},
	}
}

func (m *memStorage) ListWorkspaceNodes(_ context.Context, workspaceID string) ([]common.GraphNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []common.GraphNode
	for _, id := range m.order {
		if m.nodes[id].WorkspaceID == workspaceID {
			out = append(out, *m.nodes[id])
		}
	}
	return out, nil
}

func (m *memStorage) CreateNode(_ context.Context, node *common.GraphNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.nodes[node.ID]; exists {
		return fmt.Errorf("duplicate node id %s", node.ID)
	}
	clone := *node
	m.nodes[node.ID] = &clone
	m.order = append(m.order, node.ID)
	return nil
}

func (m *memStorage) MergeNode(_ context.Context, nodeID, synthesis string, confidence float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s not found", nodeID)
	}
	if synthesis != "" {
		if node.Synthesis == "" {
			node.Synthesis = synthesis
		} else {
			node.Synthesis += "\n\n" + synthesis
		}
	}
	node.SourceCount++
	node.TotalConfidence += confidence
	return nil
}

func (m *memStorage) CountNodes(_ context.Context, workspaceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, node := range m.nodes {
		if node.WorkspaceID == workspaceID {
			count++
		}
	}
	return count, nil
}

func (m *memStorage) GetWorkspaceStats(ctx context.Context, workspaceID string) (*store.WorkspaceStats, error) {
	count, _ := m.CountNodes(ctx, workspaceID)
	return &store.WorkspaceStats{WorkspaceID: workspaceID, Nodes: count}, nil
}

func (m *memStorage) AppendEvidence(_ context.Context, evidence []common.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evidence = append(m.evidence, evidence...)
	return nil
}

func (m *memStorage) CreateEdge(_ context.Context, _, sourceID, targetID, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[sourceID+"|"+targetID+"|"+kind] = struct{}{}
	return nil
}

func (m *memStorage) CreateJob(context.Context, *store.BuildJob) error { return nil }

func (m *memStorage) SetJobStatus(context.Context, string, string, string) error { return nil }

func (m *memStorage) SetJobResult(context.Context, string, *common.ProcessStats) error { return nil }

func (m *memStorage) GetJob(context.Context, string) (*store.BuildJob, error) { return nil, nil }
