// Package pgvector implements core.Retriever over a Postgres corpus indexed
// with the pgvector extension. The corpus table is append-only from this
// package's perspective; ingestion is an external collaborator's job.
package pgvector

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/retrieval/embedding"
	"gorm.io/gorm"
)

// corpusRow mirrors the indexed document table. Embedding dimensionality is
// fixed at ingestion time and must match the provider's.
type corpusRow struct {
	ID        int64           `gorm:"primaryKey"`
	Title     string          `gorm:"type:text"`
	Content   string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
}

func (corpusRow) TableName() string { return "ayurveda_docs" }

// scoredRow is the query projection including the computed distance.
type scoredRow struct {
	ID       int64
	Title    string
	Content  string
	Distance float64
}

// Options configure the retriever.
type Options struct {
	// Table overrides the corpus table name.
	Table string
}

// Retriever ranks corpus documents by inner-product distance (`<#>`) against
// the query embedding. Backend outages surface as core.ErrRetrievalUnavailable
// so the orchestrator can degrade to an empty context.
type Retriever struct {
	db       *gorm.DB
	provider embedding.Provider
	table    string
}

// New constructs a Retriever over an existing gorm connection.
func New(db *gorm.DB, provider embedding.Provider, optFns ...func(o *Options)) *Retriever {
	opts := Options{Table: corpusRow{}.TableName()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retriever{db: db, provider: provider, table: opts.Table}
}

// Retrieve implements core.Retriever. Ordering is ascending distance with
// ties broken by ascending id, matching the in-memory index.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (core.RetrievedContext, error) {
	if k <= 0 {
		return core.RetrievedContext{}, nil
	}
	queryVec, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", core.ErrRetrievalUnavailable, err)
	}

	var rows []scoredRow
	err = r.db.WithContext(ctx).
		Table(r.table).
		Select("id, title, content, embedding <#> ? AS distance", pgvector.NewVector(queryVec)).
		Order(gorm.Expr("embedding <#> ?", pgvector.NewVector(queryVec))).
		Order("id ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrRetrievalUnavailable, err)
	}

	out := make(core.RetrievedContext, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.ScoredDocument{
			Document: core.Document{ID: row.ID, Title: row.Title, Content: row.Content},
			Distance: row.Distance,
		})
	}
	return out, nil
}

// Migrate creates the corpus table if missing. Used by wiring code and seed
// tooling, never by the retrieval path.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&corpusRow{})
}
