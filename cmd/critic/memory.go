package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/commitcritic/critic/internal/git"
	"github.com/commitcritic/critic/internal/types"
)

var clearAll bool

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or reset the stored memory",
}

var memoryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the memory database contains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Memory status ==="))
		fmt.Printf("Database: %s\n", settings.DBPath())
		fmt.Printf("  Repositories:  %d\n", stats.Repositories)
		fmt.Printf("  Collaborators: %d\n", stats.Collaborators)
		fmt.Printf("  Exemplars:     %d\n", stats.Exemplars)
		fmt.Printf("  Antipatterns:  %d\n", stats.Antipatterns)

		repos, err := store.ListRepositories(ctx)
		if err != nil {
			return err
		}
		if len(repos) > 0 {
			fmt.Println()
			for _, r := range repos {
				fmt.Printf("  %s %s\n", r.Name, gray(fmt.Sprintf("(%s, seeded %s)",
					r.Identity, r.SeededAt.Format("2006-01-02"))))
			}
		}
		fmt.Println()
		return nil
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear [identity]",
	Short: "Forget a repository (default: the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if clearAll {
			repos, err := store.ListRepositories(ctx)
			if err != nil {
				return err
			}
			for _, r := range repos {
				if err := store.Clear(ctx, r.ID); err != nil {
					return err
				}
			}
			fmt.Printf("%s cleared %d repositories\n", color.GreenString("✓"), len(repos))
			return nil
		}

		identity := ""
		if len(args) == 1 {
			identity = args[0]
		} else {
			g, err := git.NewGit(ctx)
			if err != nil {
				return err
			}
			root, err := g.RepoRoot(ctx, ".")
			if err != nil {
				return fmt.Errorf("not inside a git repository; pass an identity explicitly: %w", err)
			}
			identity = root
		}

		repo, err := store.GetRepository(ctx, identity)
		if err != nil {
			if types.IsNotFound(err) {
				fmt.Printf("no memory for %s\n", identity)
				return nil
			}
			return err
		}

		if err := store.Clear(ctx, repo.ID); err != nil {
			return err
		}
		fmt.Printf("%s forgot %s\n", color.GreenString("✓"), repo.Name)
		return nil
	},
}

func init() {
	memoryClearCmd.Flags().BoolVar(&clearAll, "all", false, "clear every repository")
	memoryCmd.AddCommand(memoryStatusCmd)
	memoryCmd.AddCommand(memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}
