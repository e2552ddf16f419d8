package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/commitcritic/critic/internal/ai"
	"github.com/commitcritic/critic/internal/git"
	"github.com/commitcritic/critic/internal/memory"
	"github.com/commitcritic/critic/internal/types"
)

var analyzeCount int

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rate recent commits against the repository's standards",
	Long: `Score the most recent commits of the current repository and show how
they measure up against the seeded memory: average score, trend, and
any antipatterns on record.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		g, err := git.NewGit(ctx)
		if err != nil {
			return err
		}
		root, err := g.RepoRoot(ctx, ".")
		if err != nil {
			return fmt.Errorf("not inside a git repository: %w", err)
		}

		repo, err := store.GetRepository(ctx, root)
		if err != nil {
			if types.IsNotFound(err) {
				return fmt.Errorf("no memory for %s; run 'critic seed' first", root)
			}
			return err
		}

		commits, err := g.RecentCommits(ctx, root, analyzeCount)
		if err != nil {
			return err
		}
		if len(commits) == 0 {
			return fmt.Errorf("no commits to analyze")
		}

		client, err := ai.NewClient(&ai.Config{
			ScoringModel:   settings.ScoringModel,
			EmbeddingModel: settings.EmbeddingModel,
		})
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan("=== "+repo.Name+" ==="))
		printRepoContext(repo)

		var scores []int
		for _, c := range commits {
			rating, err := client.Rate(ctx, c.Message, c.ChangedPaths)
			if err != nil {
				fmt.Printf("  %s %s %s\n", c.ShortHash(), color.YellowString("?/10"), c.Message)
				continue
			}
			scores = append(scores, rating.Score)
			fmt.Printf("  %s %s %s\n", c.ShortHash(), scoreLabel(rating.Score), c.Message)
			if rating.Rationale != "" && rating.Score < types.ExemplarMinScore {
				fmt.Printf("          %s\n", color.New(color.FgHiBlack).Sprint(rating.Rationale))
			}
		}

		fmt.Println()
		if len(scores) > 0 {
			avg := 0.0
			for _, s := range scores {
				avg += float64(s)
			}
			avg /= float64(len(scores))
			fmt.Printf("Average: %.1f/10", avg)
			if trend := memory.Trend(scores); trend != "" {
				fmt.Printf(" (%s)", trend)
			}
			fmt.Println()
		}

		printAntipatterns(ctx, repo.ID)
		fmt.Println()
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeCount, "commits", 10, "commits to analyze")
	rootCmd.AddCommand(analyzeCmd)
}

func printRepoContext(repo *types.Repository) {
	gray := color.New(color.FgHiBlack).SprintFunc()

	style := string(repo.StylePattern)
	if repo.TicketPattern != "" {
		style += ", ticket refs"
	}
	if repo.UsesEmoji {
		style += ", emoji"
	}
	fmt.Printf("%s\n", gray(fmt.Sprintf("Style: %s | Language: %s | Type: %s",
		style, repo.PrimaryLanguage, repo.ProjectType)))
	if repo.Percentile != nil {
		fmt.Printf("%s\n", gray(fmt.Sprintf("Standing: at or above %.0f%% of %v",
			*repo.Percentile*100, repo.ComparisonRepos)))
	}
	fmt.Println()
}

func printAntipatterns(ctx context.Context, repoID int64) {
	patterns, err := store.ListAntipatterns(ctx, repoID, nil)
	if err != nil || len(patterns) == 0 {
		return
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n%s\n", yellow("On record:"))
	shown := patterns
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, p := range shown {
		fmt.Printf("  %s ×%d", p.Kind, p.Frequency)
		if p.Example != "" {
			fmt.Printf("  (%s)", p.Example)
		}
		fmt.Println()
	}
}

func scoreLabel(score int) string {
	text := fmt.Sprintf("%d/10", score)
	switch {
	case score >= types.ExemplarMinScore:
		return color.GreenString(text)
	case score >= 5:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}
