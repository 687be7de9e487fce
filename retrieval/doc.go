// Package retrieval houses concrete implementations of the core.Retriever
// contract. The interface itself lives in the core package to centralize
// domain contracts; keeping only implementations here prevents higher level
// packages (agents, scheduler) from depending on concrete index technology.
//
// Two backends ship today: an in-memory linear-scan index for tests and small
// corpora, and a Postgres/pgvector backend in the pgvector sub-package for
// production corpora. Both rank by inner-product distance with ties broken by
// ascending document id so results are deterministic across backends.
package retrieval
