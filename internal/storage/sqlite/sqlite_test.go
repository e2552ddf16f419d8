package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRepository(identity string) *types.Repository {
	p := 0.75
	return &types.Repository{
		Identity:        identity,
		Name:            "project",
		SeededAt:        time.Now().UTC(),
		PrimaryLanguage: "Go",
		Languages:       map[string]float64{"Go": 0.8, "Markdown": 0.2},
		Frameworks:      []string{"cobra"},
		ProjectType:     types.ProjectCLITool,
		StylePattern:    types.StyleConventional,
		UsesScopes:      true,
		CommonScopes:    []string{"parser", "cli"},
		TicketPattern:   `^[A-Z]{2,10}-\d+`,
		ComparisonRepos: []string{"kubernetes", "caddy", "hugo"},
		Percentile:      &p,
	}
}

func testExemplar(hash string, score int) *types.Exemplar {
	emb := make([]float32, types.EmbeddingDim)
	emb[0] = 0.5
	emb[1] = -0.25
	return &types.Exemplar{
		CommitHash:  hash,
		Message:     "feat(parser): handle escaped delimiters in quoted fields",
		Score:       score,
		CommitType:  "feat",
		Scope:       "parser",
		CommittedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Embedding:   emb,
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testRepository("/repos/project")
	id, err := s.PutRepository(ctx, want)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := s.GetRepository(ctx, "/repos/project")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Languages, got.Languages)
	assert.Equal(t, want.Frameworks, got.Frameworks)
	assert.Equal(t, want.CommonScopes, got.CommonScopes)
	assert.Equal(t, want.TicketPattern, got.TicketPattern)
	assert.Equal(t, want.ComparisonRepos, got.ComparisonRepos)
	require.NotNil(t, got.Percentile)
	assert.InDelta(t, 0.75, *got.Percentile, 1e-9)
	assert.True(t, got.UsesScopes)

	byID, err := s.GetRepositoryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, got.Identity, byID.Identity)
}

func TestRepositoryUpsertKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.PutRepository(ctx, testRepository("/repos/project"))
	require.NoError(t, err)

	updated := testRepository("/repos/project")
	updated.PrimaryLanguage = "Rust"
	second, err := s.PutRepository(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, first, second, "re-seeding the same identity must keep the row id")

	got, err := s.GetRepository(ctx, "/repos/project")
	require.NoError(t, err)
	assert.Equal(t, "Rust", got.PrimaryLanguage)
}

func TestGetRepositoryNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRepository(context.Background(), "/nowhere")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestPutRepositoryValidation(t *testing.T) {
	s := newTestStore(t)

	bad := testRepository("/repos/project")
	bad.Languages = map[string]float64{"Go": 0.5}
	_, err := s.PutRepository(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
}

func TestCollaboratorScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.PutRepository(ctx, testRepository("/repos/project"))
	require.NoError(t, err)

	_, err = s.PutCollaborator(ctx, 999, &types.Collaborator{Name: "alice"})
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err), "unknown repo must be a not-found error")

	aliceID, err := s.PutCollaborator(ctx, repoID, &types.Collaborator{
		Name: "alice", Email: "alice@example.com", CommitCount: 40, AvgScore: 8.2,
		PrimaryAreas: []string{"internal/parser", "cmd/cli"},
	})
	require.NoError(t, err)

	_, err = s.PutCollaborator(ctx, repoID, &types.Collaborator{Name: "bob", CommitCount: 5, AvgScore: 4.0})
	require.NoError(t, err)

	// Upsert on (repo, name) keeps the id.
	again, err := s.PutCollaborator(ctx, repoID, &types.Collaborator{Name: "alice", CommitCount: 41, AvgScore: 8.3})
	require.NoError(t, err)
	assert.Equal(t, aliceID, again)

	list, err := s.ListCollaborators(ctx, repoID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Name, "ordered by commit count descending")
	assert.Equal(t, 41, list[0].CommitCount)
	assert.Equal(t, []string{"internal/parser", "cmd/cli"}, list[0].PrimaryAreas)
}

func TestExemplarScoreFloor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.PutRepository(ctx, testRepository("/repos/project"))
	require.NoError(t, err)

	_, err = s.PutExemplar(ctx, repoID, testExemplar("aaa111", 7))
	require.Error(t, err)
	assert.True(t, types.IsValidation(err), "a 7 is rejected, never clamped to 8")

	_, err = s.PutExemplar(ctx, repoID, testExemplar("aaa111", 8))
	assert.NoError(t, err)
}

func TestExemplarEmbeddingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.PutRepository(ctx, testRepository("/repos/project"))
	require.NoError(t, err)

	want := testExemplar("bbb222", 9)
	_, err = s.PutExemplar(ctx, repoID, want)
	require.NoError(t, err)

	list, err := s.ListExemplars(ctx, repoID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, want.Message, list[0].Message)
	assert.Equal(t, want.Embedding, list[0].Embedding)
	assert.Equal(t, "feat", list[0].CommitType)
	assert.True(t, want.CommittedAt.Equal(list[0].CommittedAt))
}

func TestAntipatternsAppendAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.PutRepository(ctx, testRepository("/repos/project"))
	require.NoError(t, err)
	bobID, err := s.PutCollaborator(ctx, repoID, &types.Collaborator{Name: "bob"})
	require.NoError(t, err)

	_, err = s.AddAntipattern(ctx, repoID, &types.Antipattern{Kind: types.AntipatternVague, Example: "fix stuff", Frequency: 4})
	require.NoError(t, err)
	_, err = s.AddAntipattern(ctx, repoID, &types.Antipattern{Kind: types.AntipatternWIPChain, CollaboratorID: &bobID, Example: `"wip" starting 2025-05-01`, Frequency: 6})
	require.NoError(t, err)

	all, err := s.ListAntipatterns(ctx, repoID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, types.AntipatternWIPChain, all[0].Kind, "ordered by frequency descending")

	bobs, err := s.ListAntipatterns(ctx, repoID, &bobID)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, types.AntipatternWIPChain, bobs[0].Kind)
}

func testSnapshot(identity string) *storage.SeedSnapshot {
	return &storage.SeedSnapshot{
		Repository: testRepository(identity),
		Collaborators: []*storage.CollaboratorSeed{
			{
				Collaborator: &types.Collaborator{Name: "alice", CommitCount: 30, AvgScore: 8.1},
				Exemplars:    []*types.Exemplar{testExemplar("aaa111", 9), testExemplar("ccc333", 8)},
			},
			{
				Collaborator: &types.Collaborator{Name: "bob", CommitCount: 10, AvgScore: 4.2},
				Antipatterns: []*types.Antipattern{
					{Kind: types.AntipatternOneWord, Example: "fix", Frequency: 5},
				},
			},
		},
	}
}

func TestSaveSeedPersistsEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.SaveSeed(ctx, testSnapshot("/repos/project"))
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &storage.Stats{Repositories: 1, Collaborators: 2, Exemplars: 2, Antipatterns: 1}, stats)

	// Exemplars and findings are attributed to their collaborator.
	collabs, err := s.ListCollaborators(ctx, repoID)
	require.NoError(t, err)
	require.Len(t, collabs, 2)

	exemplars, err := s.ListExemplars(ctx, repoID)
	require.NoError(t, err)
	for _, e := range exemplars {
		require.NotNil(t, e.CollaboratorID)
	}
}

func TestSaveSeedReplacesPriorRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveSeed(ctx, testSnapshot("/repos/project"))
	require.NoError(t, err)

	snap := testSnapshot("/repos/project")
	snap.Collaborators = snap.Collaborators[:1] // alice only this time
	second, err := s.SaveSeed(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identity keeps its repo id across re-seeds")

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &storage.Stats{Repositories: 1, Collaborators: 1, Exemplars: 2, Antipatterns: 0}, stats)
}

func TestSaveSeedAtomicity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	good := testSnapshot("/repos/project")
	_, err := s.SaveSeed(ctx, good)
	require.NoError(t, err)

	// A bad exemplar anywhere must leave the previous run untouched.
	bad := testSnapshot("/repos/project")
	bad.Collaborators[0].Exemplars = append(bad.Collaborators[0].Exemplars, testExemplar("ddd444", 3))
	_, err = s.SaveSeed(ctx, bad)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &storage.Stats{Repositories: 1, Collaborators: 2, Exemplars: 2, Antipatterns: 1}, stats,
		"failed re-seed must not leave partial rows")
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	repoID, err := s.SaveSeed(ctx, testSnapshot("/repos/project"))
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, repoID))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &storage.Stats{}, stats)

	// Clearing an unknown repository is not an error.
	assert.NoError(t, s.Clear(ctx, 12345))
}

func TestListRepositoriesEmpty(t *testing.T) {
	s := newTestStore(t)

	repos, err := s.ListRepositories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
}
