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

var writeTopK int

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Draft a commit message for the staged changes",
	Long: `Suggest a commit message for the staged diff, written in the
repository's detected style and steered by its most similar
exemplary commits.`,
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

		diff, err := g.StagedDiff(ctx, root)
		if err != nil {
			return err
		}
		if len(diff.Files) == 0 {
			return fmt.Errorf("nothing staged; stage changes with 'git add' first")
		}

		var repo *types.Repository
		if r, err := store.GetRepository(ctx, root); err == nil {
			repo = r
		} else if !types.IsNotFound(err) {
			return err
		}

		client, err := ai.NewClient(&ai.Config{
			ScoringModel:   settings.ScoringModel,
			EmbeddingModel: settings.EmbeddingModel,
		})
		if err != nil {
			return err
		}

		var examples []string
		if repo != nil {
			examples, err = similarExemplars(ctx, client, repo.ID, diff)
			if err != nil {
				// Retrieval is best effort; drafting works without it.
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("warning: exemplar retrieval failed: %v", err))
			}
		}

		message, err := client.ComposeMessage(ctx, diff, repo, examples)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n%s\n\n", cyan("=== Suggested message ==="), message)
		fmt.Printf("%s\n", color.New(color.FgHiBlack).Sprintf("(%d files, +%d -%d; based on %d exemplars)",
			len(diff.Files), diff.Additions, diff.Deletions, len(examples)))
		return nil
	},
}

func init() {
	writeCmd.Flags().IntVar(&writeTopK, "top-k", memory.DefaultTopK, "similar exemplars to use as examples")
	rootCmd.AddCommand(writeCmd)
}

// similarExemplars embeds a sketch of the staged diff and retrieves the
// closest stored exemplar messages.
func similarExemplars(ctx context.Context, client *ai.Client, repoID int64, diff *types.Diff) ([]string, error) {
	index, err := memory.LoadIndex(ctx, store, repoID)
	if err != nil {
		return nil, err
	}
	if index.Len() == 0 {
		return nil, nil
	}

	query := diffSketch(diff)
	vectors, err := client.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	results, err := index.Search(vectors[0], writeTopK, memory.DefaultMinSimilarity)
	if err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(results))
	for _, r := range results {
		messages = append(messages, r.Exemplar.Message)
	}
	return messages, nil
}

// diffSketch is the text embedded to find similar past work: the file
// list plus the leading hunk content.
func diffSketch(diff *types.Diff) string {
	sketch := "files:\n"
	for _, f := range diff.Files {
		sketch += f + "\n"
	}
	text := diff.Text
	if len(text) > 4000 {
		text = text[:4000]
	}
	return sketch + "\n" + text
}
