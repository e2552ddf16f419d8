package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/commitcritic/critic/internal/types"
)

// maxDiffChars bounds how much diff text goes into the prompt.
const maxDiffChars = 12000

const composePrompt = `Write a commit message for the staged changes below.

House style:
%s

Exemplary messages from this repository:
%s

Staged changes (%d files, +%d -%d):
%s

Respond with the commit message only: a subject line, optionally
followed by a blank line and a short body. No code fences, no preamble.`

// ComposeMessage suggests a commit message for a staged diff, steered by
// the repository's detected style and a few exemplary messages.
func (c *Client) ComposeMessage(ctx context.Context, diff *types.Diff, repo *types.Repository, exemplars []string) (string, error) {
	if diff == nil || diff.Text == "" {
		return "", &types.ValidationError{Field: "diff", Reason: "no staged changes"}
	}

	prompt := fmt.Sprintf(composePrompt,
		styleGuidance(repo),
		exemplarSection(exemplars),
		len(diff.Files), diff.Additions, diff.Deletions,
		truncate(diff.Text, maxDiffChars))

	text, err := c.complete(ctx, "compose", prompt, 1024)
	if err != nil {
		return "", fmt.Errorf("failed to compose message: %w", err)
	}

	msg := strings.TrimSpace(text)
	if msg == "" {
		return "", fmt.Errorf("model returned an empty message")
	}
	return msg, nil
}

// styleGuidance renders the detected conventions as prompt instructions.
func styleGuidance(repo *types.Repository) string {
	if repo == nil {
		return "- no conventions on record; write a clear imperative subject line"
	}

	var lines []string
	if repo.StylePattern == types.StyleConventional {
		lines = append(lines, "- use conventional commits: type(scope): description")
		if repo.UsesScopes && len(repo.CommonScopes) > 0 {
			lines = append(lines, "- common scopes: "+strings.Join(repo.CommonScopes, ", "))
		}
	} else {
		lines = append(lines, "- freeform style: imperative subject line, no type prefix")
	}
	if repo.TicketPattern != "" {
		lines = append(lines, "- reference the ticket if one applies (pattern: "+repo.TicketPattern+")")
	}
	if repo.UsesEmoji {
		lines = append(lines, "- a leading emoji is customary here")
	}
	return strings.Join(lines, "\n")
}

func exemplarSection(exemplars []string) string {
	if len(exemplars) == 0 {
		return "(none on record)"
	}
	return bulleted(exemplars)
}
