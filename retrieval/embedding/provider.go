// Package embedding defines the text embedding contract used by retrievers
// and provides concrete providers: a hosted OpenAI adapter and a deterministic
// hash provider for tests and offline corpora.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Provider turns text into a fixed-dimension float vector. Treated as a pure
// external function: same text, same vector. Constructed once at process start
// and injected by reference into whichever component needs it.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// HashProvider is a deterministic embedding provider that folds token hashes
// into a fixed-dimension unit vector. It carries no semantic signal beyond
// token overlap and exists so retrieval can be exercised without a hosted
// model (tests, seed corpora, air-gapped setups).
type HashProvider struct {
	dim int
}

// NewHashProvider constructs a provider emitting vectors of the given dimension.
func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = 768
	}
	return &HashProvider{dim: dim}
}

// Embed implements Provider.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, p.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		sum := h.Sum32()
		vec[int(sum)%p.dim] += 1.0
		vec[int(sum>>16)%p.dim] += 0.5
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// Dimension implements Provider.
func (p *HashProvider) Dimension() int { return p.dim }
