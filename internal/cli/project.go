package cli

import (
	"context"
	"fmt"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"chantier"},
	Short:   "Manage projects",
	Long:    `Create, list, and manage construction projects (chantiers).`,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Long: `List projects, optionally filtered by status or search text.

Examples:
  chantier project list
  chantier project list --status "en cours"
  chantier project list --search dupont`,
	Args: cobra.NoArgs,
	RunE: runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show a project with its financial summary",
	RunE:  runProjectShow,
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new project",
	Long: `Create a new project.

Examples:
  chantier project add --name "Villa Antibes" --client "Famille Morel" --start 2025-03-01 --budget 250000`,
	Args: cobra.NoArgs,
	RunE: runProjectAdd,
}

var projectEditCmd = &cobra.Command{
	Use:   "edit [project]",
	Short: "Change fields of a project",
	Long: `Change fields of a project. Only the flags given are updated.

Examples:
  chantier project edit villa --status terminé --end 2025-07-15`,
	RunE: runProjectEdit,
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project]",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Long: `Delete a project. Its quotes, payments and expenses are kept and no
longer count toward any project.`,
	RunE: runProjectDelete,
}

var (
	projectStatus   string
	projectSearch   string
	projectName     string
	projectClient   string
	projectLocation string
	projectStart    string
	projectEnd      string
	projectBudget   string
)

func init() {
	projectListCmd.Flags().StringVarP(&projectStatus, "status", "s", "", "Filter by status (en cours, terminé, suspendu)")
	projectListCmd.Flags().StringVarP(&projectSearch, "search", "q", "", "Match name or client")

	for _, c := range []*cobra.Command{projectAddCmd, projectEditCmd} {
		c.Flags().StringVarP(&projectName, "name", "n", "", "Project name")
		c.Flags().StringVarP(&projectClient, "client", "c", "", "Client name")
		c.Flags().StringVarP(&projectLocation, "location", "l", "", "Site location")
		c.Flags().StringVar(&projectStart, "start", "", "Start date (YYYY-MM-DD or DD/MM/YYYY)")
		c.Flags().StringVar(&projectEnd, "end", "", "End date, empty to clear on edit")
		c.Flags().StringVarP(&projectBudget, "budget", "b", "", "Budget in euros")
		c.Flags().StringVarP(&projectStatus, "status", "s", "", "Status (en cours, terminé, suspendu)")
	}

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	var status model.ProjectStatus
	if projectStatus != "" {
		s, err := model.ParseProjectStatus(projectStatus)
		if err != nil {
			return err
		}
		status = s
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		projects := finance.FilterProjects(snap.Projects, projectSearch, status)
		if len(projects) == 0 {
			fmt.Println("No projects found. Add one with: chantier project add --name \"...\"")
			return nil
		}
		printProjects(cmd.OutOrStdout(), snap, projects)
		return nil
	})
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := mustProject(snap, args)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), p, finance.SummarizeProject(p, snap))
		return nil
	})
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	p := model.Project{
		Name:     projectName,
		Client:   projectClient,
		Location: projectLocation,
		Status:   model.ProjectInProgress,
	}

	var err error
	if projectStart == "" {
		p.StartDate = model.Today()
	} else if p.StartDate, err = model.ParseDate(projectStart); err != nil {
		return err
	}
	if projectEnd != "" {
		end, err := model.ParseDate(projectEnd)
		if err != nil {
			return err
		}
		p.EndDate = &end
	}
	if projectBudget != "" {
		if p.Budget, err = model.ParseMoney(projectBudget); err != nil {
			return err
		}
	}
	if projectStatus != "" {
		if p.Status, err = model.ParseProjectStatus(projectStatus); err != nil {
			return err
		}
	}
	if err := p.Validate(); err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		p.ID = slugID(p.Name, func(id string) bool {
			_, err := st.Projects().Get(ctx, id)
			return err == nil
		})

		created, err := st.Projects().Create(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		fmt.Printf("✓ Created project: %s (id: %s)\n", created.Name, created.ID)
		return nil
	})
}

// projectPatch collects the flags given to project edit
func projectPatch(cmd *cobra.Command) (model.ProjectPatch, error) {
	var patch model.ProjectPatch
	flags := cmd.Flags()

	if flags.Changed("name") {
		patch.Name = &projectName
	}
	if flags.Changed("client") {
		patch.Client = &projectClient
	}
	if flags.Changed("location") {
		patch.Location = &projectLocation
	}
	if flags.Changed("start") {
		d, err := model.ParseDate(projectStart)
		if err != nil {
			return patch, err
		}
		patch.StartDate = &d
	}
	if flags.Changed("end") {
		// A zero date clears the end date
		var d model.Date
		if projectEnd != "" {
			var err error
			if d, err = model.ParseDate(projectEnd); err != nil {
				return patch, err
			}
		}
		patch.EndDate = &d
	}
	if flags.Changed("budget") {
		b, err := model.ParseMoney(projectBudget)
		if err != nil {
			return patch, err
		}
		patch.Budget = &b
	}
	if flags.Changed("status") {
		s, err := model.ParseProjectStatus(projectStatus)
		if err != nil {
			return patch, err
		}
		patch.Status = &s
	}
	return patch, nil
}

func runProjectEdit(cmd *cobra.Command, args []string) error {
	patch, err := projectPatch(cmd)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		projects, err := st.Projects().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		p, err := resolveProject(projects, projectArg(args))
		if err != nil {
			return err
		}

		updated, err := st.Projects().Update(ctx, p.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		fmt.Printf("✓ Updated project: %s (%s)\n", updated.Name, updated.Status)
		return nil
	})
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("name the project to delete")
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		projects, err := st.Projects().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		p, err := resolveProject(projects, projectArg(args))
		if err != nil {
			return err
		}

		if err := st.Projects().Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if GetCurrentContext() == p.ID {
			_ = ClearContext()
		}

		fmt.Printf("🗑️  Deleted project: %s\n", p.Name)
		return nil
	})
}
