package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output is JSON in theory, JSON wrapped in prose and code fences
// in practice. These patterns recover the payload.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*\n?([\\s\\S]*?)\n?```")
	jsonObjectRegex    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// parseModelJSON unmarshals a model response into v, tolerating code
// fences, surrounding prose, and trailing commas.
func parseModelJSON(text string, v any) error {
	candidate := strings.TrimSpace(text)

	if m := codeFenceRegex.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(candidate, "{") {
		if m := jsonObjectRegex.FindString(candidate); m != "" {
			candidate = m
		}
	}

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	cleaned := trailingCommaRegex.ReplaceAllString(candidate, "$1")
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}

// truncate shortens s for error messages and logs.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
