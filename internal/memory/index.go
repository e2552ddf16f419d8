// Package memory implements the retrieval engine over stored
// commit-quality history: similarity search, convention detection,
// antipattern mining, collaborator profiling, and market comparison.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

const (
	// DefaultTopK is the number of similar exemplars returned when the
	// caller does not ask for more.
	DefaultTopK = 3

	// DefaultMinSimilarity is the floor below which exemplars are not
	// considered similar enough to be useful as few-shot context.
	DefaultMinSimilarity = 0.7
)

// SearchResult pairs an exemplar with its similarity to the query.
type SearchResult struct {
	Exemplar   *types.Exemplar
	Similarity float64
}

// Index is an in-memory exact-search index over exemplar embeddings for
// one repository. The corpus is bounded by the ingestion sample size
// (tens to low hundreds), so brute force beats any approximate scheme.
type Index struct {
	exemplars []*types.Exemplar
}

// NewIndex builds an index over the given exemplars. Rows without an
// embedding are skipped; they cannot participate in similarity search.
func NewIndex(exemplars []*types.Exemplar) *Index {
	withVec := make([]*types.Exemplar, 0, len(exemplars))
	for _, e := range exemplars {
		if len(e.Embedding) > 0 {
			withVec = append(withVec, e)
		}
	}
	return &Index{exemplars: withVec}
}

// LoadIndex builds an index from the store for one repository scope.
func LoadIndex(ctx context.Context, store storage.Store, repoID int64) (*Index, error) {
	exemplars, err := store.ListExemplars(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exemplars for index: %w", err)
	}
	return NewIndex(exemplars), nil
}

// Len returns the number of searchable exemplars.
func (x *Index) Len() int { return len(x.exemplars) }

// Search returns up to k exemplars whose cosine similarity to query is
// at least minSim, best first. Ordering is deterministic: similarity
// descending, ties broken by higher exemplar score, then by most recent
// commit.
func (x *Index) Search(query []float32, k int, minSim float64) ([]SearchResult, error) {
	if k < 1 {
		return nil, &types.ValidationError{Field: "k", Reason: fmt.Sprintf("must be >= 1 (got %d)", k)}
	}
	if minSim < -1 || minSim > 1 {
		return nil, &types.ValidationError{Field: "min_similarity", Reason: fmt.Sprintf("must be in [-1,1] (got %g)", minSim)}
	}
	if len(query) != types.EmbeddingDim {
		return nil, &types.ValidationError{Field: "query", Reason: fmt.Sprintf("expected %d dimensions (got %d)", types.EmbeddingDim, len(query))}
	}

	results := make([]SearchResult, 0, len(x.exemplars))
	for _, e := range x.exemplars {
		sim := Cosine(query, e.Embedding)
		if sim < minSim {
			continue
		}
		results = append(results, SearchResult{Exemplar: e, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Exemplar.Score != b.Exemplar.Score {
			return a.Exemplar.Score > b.Exemplar.Score
		}
		return a.Exemplar.CommittedAt.After(b.Exemplar.CommittedAt)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Cosine computes cosine similarity between two vectors. If either
// vector has zero norm the similarity is defined as 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
