package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/wonny/newslens/pkg/config"
)

// Client wraps the OpenAI API for completions and embeddings
// ⭐ SSOT: OpenAI 호출은 이 클라이언트에서만
type Client struct {
	client         *openai.Client
	embeddingModel string
}

// NewClient creates a new OpenAI client from config
func NewClient(cfg *config.Config) *Client {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAI.APIKey),
		option.WithRequestTimeout(cfg.OpenAI.Timeout),
	)
	return &Client{
		client:         &client,
		embeddingModel: cfg.OpenAI.EmbeddingModel,
	}
}

// Complete sends a single-user-message chat completion.
// Temperature 0: 추출/응답 모두 결정적 디코딩이어야 함.
func (c *Client) Complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed returns one embedding vector per input text
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float64, len(resp.Data))
	for _, item := range resp.Data {
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// EmbeddingModel returns the configured embedding model name
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}
