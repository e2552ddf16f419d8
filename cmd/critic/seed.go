package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/commitcritic/critic/internal/ai"
	"github.com/commitcritic/critic/internal/git"
	"github.com/commitcritic/critic/internal/memory"
)

var seedCommits int

var seedCmd = &cobra.Command{
	Use:   "seed [path|url]",
	Short: "Analyze a repository and build its commit-quality memory",
	Long: `Fetch recent commits, detect the house style, score each commit,
profile the authors, and store the best commits as exemplars.
Re-seeding a repository replaces its prior memory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		g, err := git.NewGit(ctx)
		if err != nil {
			return err
		}

		target := "."
		if len(args) == 1 {
			target = args[0]
		}

		identity, repoPath, err := resolveTarget(ctx, g, target)
		if err != nil {
			return err
		}

		n := seedCommits
		if n <= 0 {
			n = settings.CommitCount
		}
		if n > settings.MaxCommitCount {
			n = settings.MaxCommitCount
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== Seeding "+identity+" ==="))

		commits, err := g.RecentCommits(ctx, repoPath, n)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d commits\n", len(commits))

		client, err := ai.NewClient(&ai.Config{
			ScoringModel:   settings.ScoringModel,
			EmbeddingModel: settings.EmbeddingModel,
		})
		if err != nil {
			return err
		}

		seeder := &memory.Seeder{
			Store:       store,
			Scorer:      client,
			Embedder:    client,
			Summarizer:  client,
			Concurrency: settings.BatchSize,
			Progress:    printProgress,
		}

		result, err := seeder.Seed(ctx, identity, commits)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}

		printSeedSummary(result)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCommits, "commits", 0, "commits to analyze (default from config)")
	rootCmd.AddCommand(seedCmd)
}

// resolveTarget turns a CLI argument into a stable identity plus a local
// working path. Remote URLs are shallow-cloned into the cache.
func resolveTarget(ctx context.Context, g *git.Git, target string) (identity, repoPath string, err error) {
	if git.IsRemote(target) {
		dir := filepath.Join(settings.CacheDir(), uuid.NewString())
		fmt.Printf("Cloning %s...\n", target)
		if err := g.Clone(ctx, target, dir, 0); err != nil {
			return "", "", err
		}
		return strings.TrimSuffix(target, ".git"), dir, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve path %s: %w", target, err)
	}
	root, err := g.RepoRoot(ctx, abs)
	if err != nil {
		return "", "", fmt.Errorf("%s is not inside a git repository: %w", abs, err)
	}
	return root, root, nil
}

var lastPhase string

func printProgress(phase string, done, total int) {
	if phase != lastPhase {
		lastPhase = phase
		fmt.Printf("  %s...\n", phase)
	}
	if total > 1 && done == total {
		fmt.Printf("    %d/%d done\n", done, total)
	}
}

func printSeedSummary(r *memory.SeedResult) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Println()
	fmt.Printf("%s seeded in %v (run %s)\n", green("✓"), r.Elapsed.Round(10*time.Millisecond), r.RunID[:8])
	fmt.Printf("  Commits:       %d scored", r.CommitsScored)
	if r.ScoreFailures > 0 {
		fmt.Printf(", %s", yellow(fmt.Sprintf("%d failed", r.ScoreFailures)))
	}
	fmt.Println()
	fmt.Printf("  Average score: %.1f/10\n", r.AvgScore)
	fmt.Printf("  Collaborators: %d\n", r.Collaborators)
	fmt.Printf("  Exemplars:     %d\n", r.Exemplars)
	fmt.Printf("  Antipatterns:  %d\n", r.Antipatterns)
	fmt.Printf("  Percentile:    %.0f%% of reference repos at or below\n", r.Percentile*100)
	fmt.Println()
}
