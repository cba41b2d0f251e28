// Package embeddings implements the batch embedder backed by the OpenAI
// embeddings API.
package embeddings

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"KBSync/internal/ports"
)

// API requests are chunked so a large upload cannot exceed the provider's
// input limit.
const batchSize = 64

// Client embeds document batches.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ ports.Embedder = (*Client)(nil)

// NewClient builds an embedder for the given model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

// EmbedBatch returns one embedding per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: c.model,
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embeddings response carried %d vectors for %d inputs", len(resp.Data), end-start)
		}

		for _, item := range resp.Data {
			vectors = append(vectors, item.Embedding)
		}
	}

	return vectors, nil
}
