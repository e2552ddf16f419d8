// Command critic learns a repository's commit-message standards and
// uses that memory to judge and draft commits.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/commitcritic/critic/internal/config"
	"github.com/commitcritic/critic/internal/storage"
	"github.com/commitcritic/critic/internal/storage/sqlite"
)

var (
	cfgFile  string
	settings *config.Settings
	store    storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "critic",
	Short: "Commit-quality memory for your repositories",
	Long: `critic studies a repository's commit history, remembers its standards
and its best commits, and uses that memory to judge new work and
draft messages that fit the house style.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := s.EnsureDirs(); err != nil {
			return err
		}
		settings = s

		st, err := sqlite.New(s.DBPath())
		if err != nil {
			return fmt.Errorf("failed to open memory database: %w", err)
		}
		store = st
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .critic.yaml, $HOME/.critic.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
