package ports

import (
	"context"

	"KBSync/internal/domain"
)

// ArticleSource pulls published articles from the knowledge-base API.
type ArticleSource interface {
	ListArticles(ctx context.Context) ([]domain.SourceArticle, error)
}

// ArticleWriter pushes curated entries back to the knowledge-base API.
type ArticleWriter interface {
	CreateArticle(ctx context.Context, payload domain.ArticlePayload) error
	TrashArticles(ctx context.Context, ids []string) error
}

// ObjectStore is the interchange medium between pipeline stages and the
// long-term snapshot archive.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// KeywordGenerator derives a short keyword list from article body text via a
// text-generation model. The slowest, least reliable dependency of the
// pipeline; failures are scoped to single records.
type KeywordGenerator interface {
	Keywords(ctx context.Context, content string) ([]string, error)
}

// Embedder turns a batch of texts into embedding vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorDocument is one embedded record ready for upload.
type VectorDocument struct {
	ID        string
	Content   string
	Metadata  domain.VectorRecord
	Embedding []float32
}

// VectorStore persists embedded documents. Replace deletes the collection's
// rows and bulk-inserts the given documents; there is no incremental upsert.
type VectorStore interface {
	Replace(ctx context.Context, collection string, docs []VectorDocument) error
}
