package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/commitcritic/critic/internal/types"
)

// Embed converts texts into embedding vectors, one per input, in input
// order. The call is rate limited and retried on transient failures;
// a vector of the wrong dimension is an error, never silently kept.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := c.embedLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for embedding rate limit: %w", err)
	}

	var response *openai.CreateEmbeddingResponse
	err := c.retryWithBackoff(ctx, "embed", func(attemptCtx context.Context) error {
		resp, apiErr := c.openai.Embeddings.New(attemptCtx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(c.embeddingModel),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(response.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range response.Data {
		i := int(item.Index)
		if i < 0 || i >= len(vectors) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", i)
		}
		if len(item.Embedding) != types.EmbeddingDim {
			return nil, &types.ValidationError{
				Field:  "embedding",
				Reason: fmt.Sprintf("model returned %d dimensions, expected %d", len(item.Embedding), types.EmbeddingDim),
			}
		}
		vec := make([]float32, len(item.Embedding))
		for j, f := range item.Embedding {
			vec[j] = float32(f)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
