package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/chantier/internal/config"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the default project",
	Long: `Set or view the default project.

When a context is set, commands that take a project use it when none is given.

Examples:
  chantier context                 # Show current context
  chantier context set villa       # Set context to the 'villa' project
  chantier context clear           # Clear context`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [project]",
	Short: "Set the default project",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the default project",
	RunE:  runContextClear,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextClearCmd)
}

// GetCurrentContext returns the default project id, empty when none is set
func GetCurrentContext() string {
	path, err := config.ContextPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetContext saves the default project id
func SetContext(projectID string) error {
	path, err := config.ContextPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(projectID), 0644)
}

// ClearContext removes the context file
func ClearContext() error {
	path, err := config.ContextPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// projectArg picks the project named by args, or the context
func projectArg(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	return GetCurrentContext()
}

func runContextShow(cmd *cobra.Command, args []string) error {
	current := GetCurrentContext()
	if current == "" {
		fmt.Println("No default project. Use 'chantier context set <project>'.")
		return nil
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		project, err := st.Projects().Get(ctx, current)
		if err != nil {
			fmt.Printf("⚠️  Context set to '%s' but project not found\n", current)
			return nil
		}
		fmt.Printf("📁 Current context: %s (%s)\n", project.Name, project.ID)
		return nil
	})
}

func runContextSet(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		projects, err := st.Projects().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		project, err := resolveProject(projects, projectArg(args))
		if err != nil {
			return err
		}

		if err := SetContext(project.ID); err != nil {
			return fmt.Errorf("failed to set context: %w", err)
		}

		fmt.Printf("📁 Switched to: %s\n", project.Name)
		return nil
	})
}

func runContextClear(cmd *cobra.Command, args []string) error {
	if err := ClearContext(); err != nil {
		return fmt.Errorf("failed to clear context: %w", err)
	}
	fmt.Println("Context cleared")
	return nil
}

// mustProject resolves a project argument against snap
func mustProject(snap model.Snapshot, args []string) (model.Project, error) {
	return resolveProject(snap.Projects, projectArg(args))
}
