package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/contract-review/internal/llm"
	"github.com/jonathan/contract-review/internal/types"
	"gonum.org/v1/gonum/floats"
)

// embedBatchSize bounds the number of texts sent in one embedding request
const embedBatchSize = 100

// MemorySearcher ranks an in-memory corpus by cosine similarity
type MemorySearcher struct {
	embedder llm.Embedder
	entries  []types.ReferenceEntry
	vectors  [][]float64
}

// NewMemorySearcher embeds entries once and returns a searcher over them
func NewMemorySearcher(ctx context.Context, embedder llm.Embedder, entries []types.ReferenceEntry) (*MemorySearcher, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := embedAll(ctx, embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}

	s := &MemorySearcher{
		embedder: embedder,
		entries:  entries,
		vectors:  make([][]float64, len(vectors)),
	}
	for i, v := range vectors {
		s.vectors[i] = toFloat64(v)
	}
	return s, nil
}

// Len returns the number of indexed passages
func (s *MemorySearcher) Len() int {
	return len(s.entries)
}

// Search embeds query and returns the k most similar passages
func (s *MemorySearcher) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 || len(s.entries) == 0 {
		return nil, nil
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vecs))
	}
	q := toFloat64(vecs[0])

	hits := make([]Hit, len(s.entries))
	for i, e := range s.entries {
		hits[i] = Hit{Entry: e, Score: CosineSimilarity(q, s.vectors[i])}
	}
	// stable keeps corpus order among equal scores
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when lengths differ or either vector is zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	magA := math.Sqrt(floats.Dot(a, a))
	magB := math.Sqrt(floats.Dot(b, b))
	if magA == 0 || magB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (magA * magB)
}

func embedAll(ctx context.Context, embedder llm.Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		vecs, err := embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}
	return out
}
