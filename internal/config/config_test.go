package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-haiku-20241022", s.ScoringModel)
	assert.Equal(t, "text-embedding-3-small", s.EmbeddingModel)
	assert.Equal(t, 20, s.CommitCount)
	assert.Equal(t, 100, s.MaxCommitCount)
	assert.Equal(t, 5, s.BatchSize)
	assert.Contains(t, s.DataDir, ".critic")
	assert.Equal(t, filepath.Join(s.DataDir, "memory.db"), s.DBPath())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "critic.yaml")
	content := "data-dir: " + dir + "\ncommit-count: 50\nbatch-size: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, s.DataDir)
	assert.Equal(t, 50, s.CommitCount)
	assert.Equal(t, 10, s.BatchSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CRITIC_SCORING_MODEL", "claude-sonnet-4-5-20250929")
	t.Setenv("CRITIC_COMMIT_COUNT", "30")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", s.ScoringModel)
	assert.Equal(t, 30, s.CommitCount)
}

func TestCommitCountClampedToMax(t *testing.T) {
	t.Setenv("CRITIC_COMMIT_COUNT", "5000")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, s.MaxCommitCount, s.CommitCount)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	s := &Settings{DataDir: filepath.Join(dir, "nested", "critic")}
	require.NoError(t, s.EnsureDirs())

	info, err := os.Stat(s.CacheDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
