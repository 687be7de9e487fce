package core

import "context"

// Document is one immutable entry of the retrieval corpus. Embedding holds a
// fixed-dimension vector produced at ingestion time (ingestion itself is an
// external collaborator's job; this core only ranks).
type Document struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
}

// ScoredDocument pairs a retrieved document with its distance from the query
// embedding. Lower distance means higher relevance.
type ScoredDocument struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// RetrievedContext is the ordered similarity-search result injected into agent
// context, capped at k entries and ordered by ascending distance with ties
// broken by ascending document id. It is rebuilt fresh per query and never
// cached across sessions.
type RetrievedContext []ScoredDocument

// Retriever ranks corpus documents against a query. An empty result is the
// normal outcome for an empty or irrelevant corpus, not an error; callers
// treat it as "no assistive context". Backend outages surface as
// ErrRetrievalUnavailable, which the orchestrator absorbs by proceeding with
// an empty context.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (RetrievedContext, error)
}
