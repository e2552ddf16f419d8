package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/types"
)

// Scorer rates one commit's message quality on a 1..10 scale.
type Scorer interface {
	ScoreCommit(ctx context.Context, commit *types.Commit) (int, error)
}

// Embedder turns texts into fixed-dimension vectors, preserving input
// order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Seeder runs the full ingestion pipeline for one repository and
// persists the result as a single snapshot.
type Seeder struct {
	Store      storage.Store
	Scorer     Scorer
	Embedder   Embedder
	Summarizer Summarizer
	References ScoreSource

	// Concurrency caps in-flight scoring calls. Zero means 5.
	Concurrency int

	// EmbedBatch caps texts per embedding call. Zero means 100.
	EmbedBatch int

	// Progress, if set, receives phase updates for display.
	Progress func(phase string, done, total int)
}

// SeedResult summarizes one completed ingestion run.
type SeedResult struct {
	RunID         string
	RepoID        int64
	CommitsSeen   int
	CommitsScored int
	ScoreFailures int
	Collaborators int
	Exemplars     int
	Antipatterns  int
	AvgScore      float64
	Percentile    float64 // 0..1
	Elapsed       time.Duration
}

// scoredCommit pairs a commit with its quality score; ok is false when
// scoring failed and the commit is excluded from averages.
type scoredCommit struct {
	commit *types.Commit
	score  int
	ok     bool
}

// Seed analyzes commits from the repository at identity and replaces any
// prior memory for it. Scoring failures on individual commits degrade
// the run rather than aborting it; only an empty commit set, a storage
// failure, or a bad embedding dimension are fatal.
func (s *Seeder) Seed(ctx context.Context, identity string, commits []*types.Commit) (*SeedResult, error) {
	if len(commits) == 0 {
		return nil, &types.ValidationError{Field: "commits", Reason: "no commits to analyze"}
	}

	start := time.Now()
	result := &SeedResult{
		RunID:       uuid.New().String(),
		CommitsSeen: len(commits),
	}

	s.progress("detecting conventions", 0, 1)
	messages := make([]string, len(commits))
	for i, c := range commits {
		messages[i] = c.Message
	}
	style := DetectConventions(messages)

	s.progress("extracting codebase dna", 0, 1)
	repoPath := ""
	if filepath.IsAbs(identity) {
		repoPath = identity
	}
	dna := ExtractDNA(commits, repoPath)

	s.progress("scoring commits", 0, len(commits))
	scored, err := s.scoreAll(ctx, commits, result)
	if err != nil {
		return nil, err
	}

	s.progress("profiling collaborators", 0, 1)
	seeds, avgScore, err := s.buildCollaborators(ctx, scored)
	if err != nil {
		return nil, err
	}
	result.AvgScore = avgScore

	s.progress("embedding exemplars", 0, 1)
	if err := s.embedExemplars(ctx, seeds); err != nil {
		return nil, err
	}

	s.progress("comparing against references", 0, 1)
	position, err := Compare(ctx, dna.PrimaryLanguage, avgScore, s.References)
	if err != nil {
		return nil, fmt.Errorf("failed to compute market position: %w", err)
	}
	result.Percentile = position.Percentile

	repo := &types.Repository{
		Identity:        identity,
		Name:            repoName(identity),
		SeededAt:        time.Now().UTC(),
		PrimaryLanguage: dna.PrimaryLanguage,
		Languages:       dna.Languages,
		Frameworks:      dna.Frameworks,
		ProjectType:     dna.ProjectType,
		StylePattern:    style.Pattern,
		UsesScopes:      style.UsesScopes,
		CommonScopes:    style.CommonScopes,
		TicketPattern:   style.TicketPattern,
		UsesEmoji:       style.UsesEmoji,
		ComparisonRepos: position.ComparisonRepos,
		Percentile:      &position.Percentile,
	}

	s.progress("saving snapshot", 0, 1)
	repoID, err := s.Store.SaveSeed(ctx, &storage.SeedSnapshot{
		Repository:    repo,
		Collaborators: seeds,
	})
	if err != nil {
		return nil, err
	}

	result.RepoID = repoID
	result.Collaborators = len(seeds)
	for _, seed := range seeds {
		result.Exemplars += len(seed.Exemplars)
		result.Antipatterns += len(seed.Antipatterns)
	}
	result.Elapsed = time.Since(start)
	return result, nil
}

// scoreAll rates every commit with bounded concurrency. Individual
// failures are counted, not fatal.
func (s *Seeder) scoreAll(ctx context.Context, commits []*types.Commit, result *SeedResult) ([]scoredCommit, error) {
	limit := s.Concurrency
	if limit <= 0 {
		limit = 5
	}

	scored := make([]scoredCommit, len(commits))
	sem := semaphore.NewWeighted(int64(limit))
	for i, c := range commits {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("failed to acquire scoring slot: %w", err)
		}
		go func(i int, c *types.Commit) {
			defer sem.Release(1)
			score, err := s.Scorer.ScoreCommit(ctx, c)
			if err != nil {
				scored[i] = scoredCommit{commit: c}
				return
			}
			scored[i] = scoredCommit{commit: c, score: score, ok: true}
		}(i, c)
	}
	// Draining the semaphore waits for every in-flight goroutine.
	if err := sem.Acquire(ctx, int64(limit)); err != nil {
		return nil, fmt.Errorf("failed to wait for scoring: %w", err)
	}

	for i := range scored {
		if scored[i].ok {
			result.CommitsScored++
		} else {
			result.ScoreFailures++
		}
		s.progress("scoring commits", i+1, len(commits))
	}
	return scored, nil
}

// buildCollaborators groups commits by author and derives each author's
// profile, exemplars, and antipattern findings. The second return is the
// repository-wide average over scored commits.
func (s *Seeder) buildCollaborators(ctx context.Context, scored []scoredCommit) ([]*storage.CollaboratorSeed, float64, error) {
	byAuthor := map[string][]scoredCommit{}
	order := []string{}
	for _, sc := range scored {
		key := authorKey(sc.commit)
		if _, seen := byAuthor[key]; !seen {
			order = append(order, key)
		}
		byAuthor[key] = append(byAuthor[key], sc)
	}
	sort.Strings(order)

	var seeds []*storage.CollaboratorSeed
	totalScore := 0
	totalScored := 0

	for _, key := range order {
		group := byAuthor[key]
		commits := make([]*types.Commit, len(group))
		var scores []int
		for i, sc := range group {
			commits[i] = sc.commit
			if sc.ok {
				scores = append(scores, sc.score)
				totalScore += sc.score
				totalScored++
			}
		}

		profile := BuildProfile(ctx, group[0].commit.Author, group[0].commit.Email, commits, scores, s.Summarizer)
		seed := &storage.CollaboratorSeed{
			Collaborator: profile,
			Antipatterns: MineAntipatterns(commits),
		}

		for _, sc := range group {
			if !sc.ok || sc.score < types.ExemplarMinScore {
				continue
			}
			commitType, scope, _ := ParseConventional(sc.commit.Message)
			seed.Exemplars = append(seed.Exemplars, &types.Exemplar{
				CommitHash:  sc.commit.Hash,
				Message:     sc.commit.Message,
				Score:       sc.score,
				CommitType:  commitType,
				Scope:       scope,
				CommittedAt: sc.commit.Timestamp,
			})
		}

		seeds = append(seeds, seed)
	}

	avg := 0.0
	if totalScored > 0 {
		avg = float64(totalScore) / float64(totalScored)
	}
	return seeds, avg, nil
}

// embedExemplars fills in embedding vectors for every exemplar, in
// batches. A vector of the wrong dimension fails the run immediately.
func (s *Seeder) embedExemplars(ctx context.Context, seeds []*storage.CollaboratorSeed) error {
	if s.Embedder == nil {
		return nil
	}

	var all []*types.Exemplar
	for _, seed := range seeds {
		all = append(all, seed.Exemplars...)
	}
	if len(all) == 0 {
		return nil
	}

	batch := s.EmbedBatch
	if batch <= 0 {
		batch = 100
	}

	for offset := 0; offset < len(all); offset += batch {
		end := offset + batch
		if end > len(all) {
			end = len(all)
		}
		texts := make([]string, end-offset)
		for i, e := range all[offset:end] {
			texts[i] = e.Message
		}

		vectors, err := s.Embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed exemplars: %w", err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for i, vec := range vectors {
			if len(vec) != types.EmbeddingDim {
				return &types.ValidationError{
					Field:  "embedding",
					Reason: fmt.Sprintf("expected %d dimensions (got %d)", types.EmbeddingDim, len(vec)),
				}
			}
			all[offset+i].Embedding = vec
		}
		s.progress("embedding exemplars", end, len(all))
	}
	return nil
}

func (s *Seeder) progress(phase string, done, total int) {
	if s.Progress != nil {
		s.Progress(phase, done, total)
	}
}

// authorKey dedupes authors by email when present, otherwise by name.
func authorKey(c *types.Commit) string {
	if c.Email != "" {
		return strings.ToLower(c.Email)
	}
	return c.Author
}

// repoName derives a display name from the identity, which is either a
// canonical URL or an absolute local path.
func repoName(identity string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(identity, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, "/\\"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return identity
	}
	return trimmed
}
