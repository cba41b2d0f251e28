// Package vectorstore persists embedded documents into the pgvector table
// read by the retrieval system.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"KBSync/internal/ports"
)

const embeddingTable = "langchain_pg_embedding"

// Inserts are chunked to keep statements below the Postgres parameter limit.
const insertChunk = 500

// Postgres is a VectorStore backed by a pgvector-enabled database.
type Postgres struct {
	db     *sql.DB
	sq     sq.StatementBuilderType
	logger *slog.Logger
}

var _ ports.VectorStore = (*Postgres)(nil)

// New opens and pings the database.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{
		db:     db,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger.With("component", "vectorstore"),
	}, nil
}

// Close releases the database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Replace deletes every row of the collection and bulk-inserts docs in one
// transaction, so readers never observe a partially replaced collection.
func (p *Postgres) Replace(ctx context.Context, collection string, docs []ports.VectorDocument) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := p.sq.Delete(embeddingTable).Where(sq.Eq{"collection_id": collection}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete collection rows: %w", err)
	}
	deleted, _ := result.RowsAffected()

	for start := 0; start < len(docs); start += insertChunk {
		end := min(start+insertChunk, len(docs))
		if err := p.insertChunk(ctx, tx, collection, docs[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	p.logger.Info("collection replaced", "collection", collection, "deleted", deleted, "inserted", len(docs))
	return nil
}

func (p *Postgres) insertChunk(ctx context.Context, tx *sql.Tx, collection string, docs []ports.VectorDocument) error {
	builder := p.sq.Insert(embeddingTable).Columns("id", "collection_id", "embedding", "document", "cmetadata")

	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		builder = builder.Values(doc.ID, collection, pgvector.NewVector(doc.Embedding), doc.Content, meta)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}
	return nil
}
