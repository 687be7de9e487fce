package retrieval

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
)

var _ core.Retriever = (*InMemoryIndex)(nil)

func seedIndex(t *testing.T) *InMemoryIndex {
	t.Helper()
	idx := NewInMemoryIndex(embedding.NewHashProvider(64))
	err := idx.Add(context.Background(),
		core.Document{ID: 1, Title: "Vata diet", Content: "warm cooked grounding foods for vata imbalance"},
		core.Document{ID: 2, Title: "Pitta herbs", Content: "cooling herbs like brahmi reduce pitta heat"},
		core.Document{ID: 3, Title: "Kapha routine", Content: "vigorous exercise and light dry foods for kapha"},
	)
	require.NoError(t, err)
	return idx
}

func TestInMemoryIndex_Retrieve_RanksByRelevance(t *testing.T) {
	idx := seedIndex(t)

	docs, err := idx.Retrieve(context.Background(), "warm foods for vata imbalance", 2)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].Document.ID)
	// Distances are ascending (most similar first).
	assert.LessOrEqual(t, docs[0].Distance, docs[1].Distance)
	// Inner-product distance of overlapping unit vectors is negative.
	assert.Less(t, docs[0].Distance, 0.0)
}

func TestInMemoryIndex_Retrieve_CapsAtK(t *testing.T) {
	idx := seedIndex(t)

	docs, err := idx.Retrieve(context.Background(), "ayurveda", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	all, err := idx.Retrieve(context.Background(), "ayurveda", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryIndex_Retrieve_EmptyCorpus(t *testing.T) {
	idx := NewInMemoryIndex(embedding.NewHashProvider(64))

	docs, err := idx.Retrieve(context.Background(), "anything", 5)

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInMemoryIndex_Retrieve_ZeroK(t *testing.T) {
	idx := seedIndex(t)

	docs, err := idx.Retrieve(context.Background(), "anything", 0)

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInMemoryIndex_Retrieve_TieBreaksByID(t *testing.T) {
	idx := NewInMemoryIndex(embedding.NewHashProvider(64))
	// Identical content embeds identically, forcing a distance tie.
	require.NoError(t, idx.Add(context.Background(),
		core.Document{ID: 7, Title: "copy", Content: "same text"},
		core.Document{ID: 2, Title: "copy", Content: "same text"},
	))

	docs, err := idx.Retrieve(context.Background(), "same text", 2)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(2), docs[0].Document.ID)
	assert.Equal(t, int64(7), docs[1].Document.ID)
}

func TestInMemoryIndex_Add_PrecomputedEmbeddingKept(t *testing.T) {
	idx := NewInMemoryIndex(embedding.NewHashProvider(4))
	require.NoError(t, idx.Add(context.Background(),
		core.Document{ID: 1, Title: "t", Content: "c", Embedding: []float32{1, 0, 0, 0}},
	))
	assert.Equal(t, 1, idx.Len())

	docs, err := idx.Retrieve(context.Background(), "c", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestInnerProductDistance(t *testing.T) {
	assert.Equal(t, -1.0, innerProductDistance([]float32{1, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, innerProductDistance([]float32{1, 0}, []float32{0, 1}))
	// Mismatched dimensions rank last, not as orthogonal.
	assert.True(t, math.IsInf(innerProductDistance([]float32{1}, []float32{1, 0}), 1))
}
