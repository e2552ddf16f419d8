// Package ai provides the scoring, embedding, and summarization services
// backed by hosted model APIs.
package ai

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Model defaults. The scoring model favors cost over depth: rating a
// one-line commit message does not need a frontier model.
const (
	DefaultScoringModel   = "claude-3-5-haiku-20241022"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config holds client configuration.
type Config struct {
	AnthropicKey   string // falls back to ANTHROPIC_API_KEY
	OpenAIKey      string // falls back to OPENAI_API_KEY
	ScoringModel   string
	EmbeddingModel string
	Retry          RetryConfig
}

// Client bundles the hosted-API handles behind the scoring, embedding,
// and summarization methods.
type Client struct {
	anthropic      *anthropic.Client
	openai         *openai.Client
	scoringModel   string
	embeddingModel string
	retry          RetryConfig
	sem            *semaphore.Weighted
	embedLimiter   *rate.Limiter
}

// NewClient creates an AI client. Both API keys are required: scoring
// and summaries go through Anthropic, embeddings through OpenAI.
func NewClient(cfg *Config) (*Client, error) {
	anthropicKey := cfg.AnthropicKey
	if anthropicKey == "" {
		anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
		if anthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}
	openaiKey := cfg.OpenAIKey
	if openaiKey == "" {
		openaiKey = os.Getenv("OPENAI_API_KEY")
		if openaiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
	}

	scoringModel := cfg.ScoringModel
	if scoringModel == "" {
		scoringModel = DefaultScoringModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	var sem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	anthropicClient := anthropic.NewClient(anthropicopt.WithAPIKey(anthropicKey))
	openaiClient := openai.NewClient(openaiopt.WithAPIKey(openaiKey))

	return &Client{
		anthropic:      &anthropicClient,
		openai:         &openaiClient,
		scoringModel:   scoringModel,
		embeddingModel: embeddingModel,
		retry:          retry,
		sem:            sem,
		// Embedding calls are batched, so a gentle request rate is enough
		// to stay clear of per-minute limits.
		embedLimiter: rate.NewLimiter(rate.Limit(2), 1),
	}, nil
}
