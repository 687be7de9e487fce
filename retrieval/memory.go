package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
)

// InMemoryIndex is a process-local core.Retriever holding the corpus in a
// slice guarded by an RWMutex. Ranking is a linear scan over inner-product
// distance, matching how the pgvector backend orders (`<#>`). Best suited for
// tests, seed corpora and single-process deployments; swap for the pgvector
// backend when the corpus outgrows memory.
type InMemoryIndex struct {
	mu       sync.RWMutex
	docs     []core.Document
	provider embedding.Provider
}

// NewInMemoryIndex constructs an empty index over the given embedding provider.
func NewInMemoryIndex(provider embedding.Provider) *InMemoryIndex {
	return &InMemoryIndex{provider: provider}
}

// Add indexes documents. Documents without an embedding are embedded through
// the provider. Intended for wiring/seeding; the retrieval path never mutates.
func (idx *InMemoryIndex) Add(ctx context.Context, docs ...core.Document) error {
	for _, d := range docs {
		if d.Embedding == nil {
			vec, err := idx.provider.Embed(ctx, d.Title+"\n"+d.Content)
			if err != nil {
				return err
			}
			d.Embedding = vec
		}
		idx.mu.Lock()
		idx.docs = append(idx.docs, d)
		idx.mu.Unlock()
	}
	return nil
}

// Len returns the number of indexed documents.
func (idx *InMemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Retrieve implements core.Retriever: the k lowest-distance documents, ties
// broken by ascending document id. An empty corpus yields an empty context,
// not an error.
func (idx *InMemoryIndex) Retrieve(ctx context.Context, query string, k int) (core.RetrievedContext, error) {
	if k <= 0 {
		return core.RetrievedContext{}, nil
	}
	queryVec, err := idx.provider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scored := make(core.RetrievedContext, 0, len(idx.docs))
	for _, d := range idx.docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scored = append(scored, core.ScoredDocument{Document: d, Distance: innerProductDistance(queryVec, d.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Document.ID < scored[j].Document.ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// innerProductDistance is the negative inner product, the same metric pgvector
// exposes as `<#>`: lower means more similar. Mismatched lengths score as
// maximally distant rather than erroring, so a partially migrated corpus
// degrades instead of failing.
func innerProductDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return -dot
}
