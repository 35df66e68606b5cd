package cli

import (
	"context"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [project]",
	Short: "Show the financial summary of a project",
	Long: `Show what is committed, collected, spent and still owed on a project.

Examples:
  chantier summary                      # Context project
  chantier summary "villa antibes"`,
	RunE: runProjectShow,
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show totals across all projects",
	Args:  cobra.NoArgs,
	RunE:  runOverview,
}

func runOverview(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		printOverview(cmd.OutOrStdout(), finance.BuildOverview(snap))
		return nil
	})
}
