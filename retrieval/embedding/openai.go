package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// OpenAIOptions configure the hosted embedding provider.
type OpenAIOptions struct {
	Model     string
	Dimension int
}

// OpenAIProvider generates embeddings through the OpenAI Embeddings API.
type OpenAIProvider struct {
	client *openai.Client
	opts   OpenAIOptions
}

// NewOpenAIProvider creates a provider using the official client. The
// dimension must match how the corpus was indexed.
func NewOpenAIProvider(optFns ...func(o *OpenAIOptions)) *OpenAIProvider {
	client := openai.NewClient()
	return NewOpenAIProviderFromClient(&client, optFns...)
}

// NewOpenAIProviderFromClient creates a provider from an existing client.
func NewOpenAIProviderFromClient(client *openai.Client, optFns ...func(o *OpenAIOptions)) *OpenAIProvider {
	opts := OpenAIOptions{
		Model:     openai.EmbeddingModelTextEmbedding3Small,
		Dimension: 768,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIProvider{client: client, opts: opts}
}

// Embed implements Provider.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      p.opts.Model,
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Dimensions: openai.Int(int64(p.opts.Dimension)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings returned no data")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Dimension implements Provider.
func (p *OpenAIProvider) Dimension() int { return p.opts.Dimension }
