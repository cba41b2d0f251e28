// Package llm implements the keyword generator backed by an
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"KBSync/internal/ports"
)

// KeywordClient derives keywords from article bodies via chat completions.
type KeywordClient struct {
	client      *openai.Client
	model       string
	maxKeywords int
}

var _ ports.KeywordGenerator = (*KeywordClient)(nil)

// NewKeywordClient builds a client for the given model. maxKeywords below 1
// falls back to 2, the historical extraction size.
func NewKeywordClient(apiKey, model string, maxKeywords int) *KeywordClient {
	if maxKeywords < 1 {
		maxKeywords = 2
	}
	return &KeywordClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxKeywords: maxKeywords,
	}
}

// Keywords asks the model for a short comma-separated keyword list covering
// content and splits the answer into individual keywords.
func (c *KeywordClient) Keywords(ctx context.Context, content string) ([]string, error) {
	prompt := fmt.Sprintf("Extract up to %d relevant keywords from the content. Respond with the keywords only, separated by commas.", c.maxKeywords)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	keywords := splitReply(resp.Choices[0].Message.Content)
	if len(keywords) > c.maxKeywords {
		keywords = keywords[:c.maxKeywords]
	}
	return keywords, nil
}

// splitReply splits the model's comma-separated reply into keywords. Only
// ", " delimits; keywords themselves may contain spaces.
func splitReply(content string) []string {
	parts := strings.Split(content, ", ")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
