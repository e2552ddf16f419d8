package ai

import (
	"context"
	"fmt"
	"strings"
)

const summaryPrompt = `In one sentence, describe what this contributor works on.

Contributor: %s
Most-touched areas: %s
Recent commit subjects:
%s

Respond with the sentence only, no preamble.`

// Summarize produces a one-line description of a contributor's focus
// from their most-touched areas and recent commit subjects.
func (c *Client) Summarize(ctx context.Context, author string, areas []string, recentMessages []string) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, author, strings.Join(areas, ", "), bulleted(recentMessages))

	text, err := c.complete(ctx, "summarize", prompt, 256)
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", author, err)
	}

	// Single line; the model occasionally pads with blank lines.
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line, nil
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
