package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

// fakeScorer rates by message prefix so tests can steer scores.
type fakeScorer struct {
	failHashes map[string]bool
}

func (f *fakeScorer) ScoreCommit(_ context.Context, c *types.Commit) (int, error) {
	if f.failHashes[c.Hash] {
		return 0, errors.New("api unavailable")
	}
	switch {
	case strings.HasPrefix(c.Message, "feat"), strings.HasPrefix(c.Message, "fix"):
		return 9, nil
	case strings.HasPrefix(c.Message, "wip"):
		return 2, nil
	default:
		return 5, nil
	}
}

type fakeEmbedder struct {
	dim   int
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	dim := f.dim
	if dim == 0 {
		dim = types.EmbeddingDim
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, dim)
		v[0] = float32(len(texts[i]))
		out[i] = v
	}
	return out, nil
}

// memStore records the snapshot SaveSeed receives.
type memStore struct {
	storage.Store
	saved *storage.SeedSnapshot
	err   error
}

func (m *memStore) SaveSeed(_ context.Context, snap *storage.SeedSnapshot) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.saved = snap
	return 42, nil
}

func seedCommit(hash, msg, author string, minute int) *types.Commit {
	return &types.Commit{
		Hash:      hash,
		Message:   msg,
		Author:    author,
		Email:     strings.ToLower(author) + "@example.com",
		Timestamp: time.Date(2025, 5, 1, 10, minute, 0, 0, time.UTC),
		ChangedPaths: []string{
			"internal/core/" + hash + ".go",
		},
	}
}

func testCommits() []*types.Commit {
	return []*types.Commit{
		seedCommit("c1", "feat(core): add retry budget", "Alice", 10),
		seedCommit("c2", "fix(core): off-by-one in backoff", "Alice", 9),
		seedCommit("c3", "update", "Bob", 8),
		seedCommit("c4", "wip", "Bob", 7),
		seedCommit("c5", "feat(core): expose metrics hook", "Alice", 6),
	}
}

func newTestSeeder(store storage.Store) (*Seeder, *fakeScorer, *fakeEmbedder) {
	scorer := &fakeScorer{}
	embedder := &fakeEmbedder{}
	return &Seeder{
		Store:      store,
		Scorer:     scorer,
		Embedder:   embedder,
		References: fixedScores{"kubernetes": 7.9, "caddy": 8.1, "hugo": 7.6},
	}, scorer, embedder
}

func TestSeedEndToEnd(t *testing.T) {
	store := &memStore{}
	seeder, _, _ := newTestSeeder(store)

	result, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.NoError(t, err)

	assert.Equal(t, int64(42), result.RepoID)
	assert.Equal(t, 5, result.CommitsSeen)
	assert.Equal(t, 5, result.CommitsScored)
	assert.Equal(t, 0, result.ScoreFailures)
	assert.Equal(t, 2, result.Collaborators)
	assert.Equal(t, 3, result.Exemplars, "only the three 9s clear the exemplar floor")
	assert.NotEmpty(t, result.RunID)

	require.NotNil(t, store.saved)
	repo := store.saved.Repository
	assert.Equal(t, "/repos/project", repo.Identity)
	assert.Equal(t, "project", repo.Name)
	assert.Equal(t, types.StyleConventional, repo.StylePattern, "3/5 conventional")
	assert.Equal(t, "Go", repo.PrimaryLanguage)
	require.NotNil(t, repo.Percentile)
	assert.NoError(t, repo.Validate(), "the snapshot must pass store validation")

	// Exemplars carry parsed type/scope and their embeddings.
	for _, seed := range store.saved.Collaborators {
		for _, e := range seed.Exemplars {
			assert.Len(t, e.Embedding, types.EmbeddingDim)
			assert.NotEmpty(t, e.CommitType)
			assert.Equal(t, "core", e.Scope)
			assert.NoError(t, e.Validate())
		}
	}
}

func TestSeedPartialScoringFailures(t *testing.T) {
	store := &memStore{}
	seeder, scorer, _ := newTestSeeder(store)
	scorer.failHashes = map[string]bool{"c1": true, "c3": true}

	result, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.NoError(t, err, "individual scoring failures must not abort the run")

	assert.Equal(t, 3, result.CommitsScored)
	assert.Equal(t, 2, result.ScoreFailures)
	assert.Equal(t, 2, result.Exemplars, "the failed feat commit cannot become an exemplar")
}

func TestSeedEmbeddingDimensionMismatchFails(t *testing.T) {
	store := &memStore{}
	seeder, _, embedder := newTestSeeder(store)
	embedder.dim = 64

	_, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Nil(t, store.saved, "nothing is persisted after a failed embed")
}

func TestSeedNoCommits(t *testing.T) {
	store := &memStore{}
	seeder, _, _ := newTestSeeder(store)

	_, err := seeder.Seed(context.Background(), "/repos/project", nil)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestSeedStoreFailurePropagates(t *testing.T) {
	store := &memStore{err: &types.StoreError{Op: "save_seed", Err: errors.New("disk full")}}
	seeder, _, _ := newTestSeeder(store)

	_, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.Error(t, err)
	var se *types.StoreError
	assert.True(t, errors.As(err, &se))
}

func TestSeedEmbedsInBatches(t *testing.T) {
	store := &memStore{}
	seeder, _, embedder := newTestSeeder(store)
	seeder.EmbedBatch = 2

	_, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls, "3 exemplars at batch size 2 is two calls")
}

func TestSeedProgressPhases(t *testing.T) {
	store := &memStore{}
	seeder, _, _ := newTestSeeder(store)

	var phases []string
	seeder.Progress = func(phase string, done, total int) {
		if len(phases) == 0 || phases[len(phases)-1] != phase {
			phases = append(phases, phase)
		}
	}

	_, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"detecting conventions",
		"extracting codebase dna",
		"scoring commits",
		"profiling collaborators",
		"embedding exemplars",
		"comparing against references",
		"saving snapshot",
	}, phases)
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		identity string
		want     string
	}{
		{"/home/dev/project", "project"},
		{"https://github.com/acme/widget.git", "widget"},
		{"https://github.com/acme/widget", "widget"},
		{"widget", "widget"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, repoName(tt.identity), tt.identity)
	}
}

func TestAuthorKey(t *testing.T) {
	withEmail := &types.Commit{Author: "Alice", Email: "Alice@Example.com"}
	assert.Equal(t, "alice@example.com", authorKey(withEmail))

	noEmail := &types.Commit{Author: "Alice"}
	assert.Equal(t, "Alice", authorKey(noEmail))
}

func TestSeedResultAverageExcludesFailures(t *testing.T) {
	store := &memStore{}
	seeder, scorer, _ := newTestSeeder(store)
	scorer.failHashes = map[string]bool{"c4": true} // drop the 2

	result, err := seeder.Seed(context.Background(), "/repos/project", testCommits())
	require.NoError(t, err)
	// Remaining scores: 9, 9, 5, 9.
	assert.InDelta(t, 8.0, result.AvgScore, 1e-9)
}
