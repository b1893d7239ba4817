package graph

import (
	"context"
	"strings"

	"github.com/lattice-kg/lattice/internal/util"
	"github.com/lattice-kg/lattice/pkg/ai"
	"github.com/lattice-kg/lattice/pkg/logger"
	"github.com/lattice-kg/lattice/pkg/store"
)

// EmbeddingCache maps concept names to embedding vectors, built once per
// pipeline run and read-only afterwards. Names are deduplicated
// case-insensitively; the stored key is the original casing of the first
// occurrence. Failed embeddings are zero vectors, so lookups never need
// a missing-key branch.
type EmbeddingCache struct {
	vectors map[string][]float32
	dim     int
}

// Get returns the cached vector for a name, or a zero vector when the
// name was never cached.
func (c *EmbeddingCache) Get(name string) []float32 {
	if vec, ok := c.vectors[cacheKey(name)]; ok {
		return vec
	}
	return make([]float32, c.dim)
}

// Lookup returns the cached vector and whether it is usable for
// similarity matching. Zero vectors report false: a concept that failed
// to embed must not be matched or persisted.
func (c *EmbeddingCache) Lookup(name string) ([]float32, bool) {
	vec, ok := c.vectors[cacheKey(name)]
	if !ok {
		return make([]float32, c.dim), false
	}
	for _, v := range vec {
		if v != 0 {
			return vec, true
		}
	}
	return vec, false
}

// Len returns the number of distinct cached names.
func (c *EmbeddingCache) Len() int {
	return len(c.vectors)
}

func cacheKey(name string) string {
	return strings.ToLower(ai.NormalizeName(name))
}

// BuildEmbeddingCache embeds every distinct candidate name in batches.
// A failed batch degrades to zero vectors for its names after retries,
// so one embedding outage never aborts a pipeline run.
func (g *HierarchyClient) BuildEmbeddingCache(
	ctx context.Context,
	names []string,
	aiClient ai.GraphAIClient,
) (*EmbeddingCache, error) {
	if aiClient == nil {
		return nil, errNilAIClient
	}

	cache := &EmbeddingCache{
		vectors: make(map[string][]float32),
		dim:     aiClient.EmbeddingDimensions(),
	}

	// Case-insensitive dedupe keeping the first original casing.
	keys := make([]string, 0, len(names))
	originals := make([]string, 0, len(names))
	seen := make(map[string]struct{})
	for _, name := range names {
		original := ai.NormalizeName(name)
		if original == "" {
			continue
		}
		key := strings.ToLower(original)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		originals = append(originals, original)
	}
	if len(keys) == 0 {
		return cache, nil
	}

	successes := 0
	failures := 0

	err := store.ChunkRange(len(keys), g.embedBatchSize, func(start, end int) error {
		inputs := make([][]byte, end-start)
		for i := start; i < end; i++ {
			inputs[i-start] = []byte(originals[i])
		}

		vectors, err := util.RetryWithContext(ctx, g.maxRetries, func(ctx context.Context) ([][]float32, error) {
			return aiClient.GenerateEmbeddings(ctx, inputs)
		})
		if err != nil || len(vectors) != len(inputs) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("[Graph][Cache] Embedding batch failed, using zero vectors",
				"batch_start", start, "batch_size", len(inputs), "error", err)
			for i := start; i < end; i++ {
				cache.vectors[keys[i]] = make([]float32, cache.dim)
				failures++
			}
			return nil
		}

		for i := start; i < end; i++ {
			cache.vectors[keys[i]] = vectors[i-start]
			successes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[Graph][Cache] Embedding cache built",
		"unique_names", len(keys), "successes", successes, "failures", failures)
	return cache, nil
}
