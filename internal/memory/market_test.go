package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedScores map[string]float64

func (f fixedScores) ReferenceScore(_ context.Context, name string) (float64, error) {
	score, ok := f[name]
	if !ok {
		return 0, errors.New("unknown reference " + name)
	}
	return score, nil
}

func TestCompareAboveAll(t *testing.T) {
	src := fixedScores{"kubernetes": 7.9, "caddy": 8.1, "hugo": 7.6}

	pos, err := Compare(context.Background(), "Go", 9.0, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"kubernetes", "caddy", "hugo"}, pos.ComparisonRepos)
	assert.InDelta(t, 1.0, pos.Percentile, 1e-9, "above every reference")
}

func TestCompareBelowAll(t *testing.T) {
	src := fixedScores{"kubernetes": 7.9, "caddy": 8.1, "hugo": 7.6}

	pos, err := Compare(context.Background(), "Go", 3.0, src)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, pos.Percentile, 1e-9, "only the own score is at or below itself")
}

func TestCompareTiesFavorOwnScore(t *testing.T) {
	src := fixedScores{"kubernetes": 8.0, "caddy": 8.0, "hugo": 8.0}

	pos, err := Compare(context.Background(), "Go", 8.0, src)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pos.Percentile, 1e-9, "equal scores all count in the own score's favor")
}

func TestCompareUnknownLanguageUsesDefaults(t *testing.T) {
	pos, err := Compare(context.Background(), "COBOL", 8.2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"linux", "git", "vscode"}, pos.ComparisonRepos)
	// 8.2 is at or above linux (8.0) and vscode (7.8) but below git (8.5).
	assert.InDelta(t, 0.75, pos.Percentile, 1e-9)
}

func TestCompareSourceFailure(t *testing.T) {
	_, err := Compare(context.Background(), "Go", 8.0, fixedScores{})
	assert.Error(t, err)
}

func TestCachedScoresCoverAllReferences(t *testing.T) {
	src := CachedScores()
	for _, refs := range referenceRepos {
		for _, r := range refs {
			score, err := src.ReferenceScore(context.Background(), r.Name)
			require.NoError(t, err)
			assert.Equal(t, r.Score, score)
		}
	}
}
