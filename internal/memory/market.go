package memory

import (
	"context"
	"fmt"
)

// Reference is one benchmark repository with a known average commit
// score.
type Reference struct {
	Name  string
	Score float64
}

// ScoreSource supplies the average score of a reference repository. The
// default source serves cached values; a live implementation could
// recompute them.
type ScoreSource interface {
	ReferenceScore(ctx context.Context, name string) (float64, error)
}

// referenceRepos maps a primary language to its benchmark set. At most
// maxReferences entries are consulted per comparison.
var referenceRepos = map[string][]Reference{
	"Go": {
		{"kubernetes", 7.9},
		{"caddy", 8.1},
		{"hugo", 7.6},
	},
	"Python": {
		{"fastapi", 8.4},
		{"django", 8.1},
		{"flask", 7.9},
	},
	"JavaScript": {
		{"react", 7.8},
		{"express", 7.5},
		{"next", 7.6},
	},
	"TypeScript": {
		{"typescript", 8.0},
		{"vscode", 7.8},
		{"deno", 7.7},
	},
	"Rust": {
		{"ripgrep", 8.5},
		{"tokio", 8.2},
		{"axum", 8.0},
	},
}

// defaultReferences is used when the primary language has no table.
var defaultReferences = []Reference{
	{"linux", 8.0},
	{"git", 8.5},
	{"vscode", 7.8},
}

const maxReferences = 3

// MarketPosition is the outcome of comparing a repository's average
// score against its reference set.
type MarketPosition struct {
	ComparisonRepos []string
	ReferenceScores map[string]float64
	Percentile      float64 // 0..1
}

// cachedScoreSource serves the scores baked into the reference tables.
type cachedScoreSource struct {
	scores map[string]float64
}

func (c *cachedScoreSource) ReferenceScore(_ context.Context, name string) (float64, error) {
	score, ok := c.scores[name]
	if !ok {
		return 0, fmt.Errorf("no cached score for reference %s", name)
	}
	return score, nil
}

// CachedScores returns a ScoreSource backed by the built-in reference
// tables.
func CachedScores() ScoreSource {
	scores := map[string]float64{}
	for _, refs := range referenceRepos {
		for _, r := range refs {
			scores[r.Name] = r.Score
		}
	}
	for _, r := range defaultReferences {
		scores[r.Name] = r.Score
	}
	return &cachedScoreSource{scores: scores}
}

// Compare computes the repository's market position for its primary
// language. Percentile is the fraction of {reference scores plus the
// own score} that are less than or equal to the own score: ties count
// in the own score's favor, so a score equal to every reference still
// ranks 1.0.
func Compare(ctx context.Context, primaryLanguage string, ownScore float64, src ScoreSource) (*MarketPosition, error) {
	refs, ok := referenceRepos[primaryLanguage]
	if !ok {
		refs = defaultReferences
	}
	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}
	if src == nil {
		src = CachedScores()
	}

	pos := &MarketPosition{ReferenceScores: map[string]float64{}}
	scores := []float64{ownScore}
	for _, r := range refs {
		score, err := src.ReferenceScore(ctx, r.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to get score for %s: %w", r.Name, err)
		}
		pos.ComparisonRepos = append(pos.ComparisonRepos, r.Name)
		pos.ReferenceScores[r.Name] = score
		scores = append(scores, score)
	}

	atOrBelow := 0
	for _, s := range scores {
		if s <= ownScore {
			atOrBelow++
		}
	}
	pos.Percentile = float64(atOrBelow) / float64(len(scores))

	return pos, nil
}
