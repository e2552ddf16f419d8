package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/commitcritic/critic/internal/types"
)

// Rating is one commit message graded by the model.
type Rating struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

const scoringPrompt = `You are a commit message quality grader.

Rate the commit message below on a 1-10 scale:
  1-3: useless (one word, "wip", "fix stuff", no information)
  4-6: mediocre (describes what vaguely, no why, poor structure)
  7-8: good (clear what and why, well scoped)
  9-10: exemplary (precise subject, motivation, scoped, could teach by example)

Commit message:
%s

Changed files:
%s

Respond with JSON only:
{"score": <1-10>, "rationale": "<one sentence>"}`

// Rate grades a single commit message.
func (c *Client) Rate(ctx context.Context, message string, changedPaths []string) (*Rating, error) {
	paths := "(unknown)"
	if len(changedPaths) > 0 {
		shown := changedPaths
		if len(shown) > 20 {
			shown = shown[:20]
		}
		paths = strings.Join(shown, "\n")
	}
	prompt := fmt.Sprintf(scoringPrompt, message, paths)

	text, err := c.complete(ctx, "score", prompt, 512)
	if err != nil {
		return nil, err
	}

	var rating Rating
	if err := parseModelJSON(text, &rating); err != nil {
		return nil, fmt.Errorf("failed to parse score (response: %s): %w", truncate(text, 200), err)
	}
	if rating.Score < 1 || rating.Score > 10 {
		return nil, &types.ValidationError{Field: "score", Reason: fmt.Sprintf("model returned %d, expected 1..10", rating.Score)}
	}
	return &rating, nil
}

// ScoreCommit adapts Rate to the seeder's Scorer interface.
func (c *Client) ScoreCommit(ctx context.Context, commit *types.Commit) (int, error) {
	rating, err := c.Rate(ctx, commit.Message, commit.ChangedPaths)
	if err != nil {
		return 0, fmt.Errorf("failed to score commit %s: %w", commit.ShortHash(), err)
	}
	return rating.Score, nil
}

// complete sends one user message and returns the concatenated text
// blocks of the reply, with retry on transient failures.
func (c *Client) complete(ctx context.Context, operation, prompt string, maxTokens int64) (string, error) {
	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := c.anthropic.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.scoringModel),
			MaxTokens: maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
