package cli

import (
	"context"
	"fmt"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Manage project expenses",
}

var expenseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses",
	Long: `List expenses, optionally by project or type.

Examples:
  chantier expense list --project villa --type matériaux`,
	Args: cobra.NoArgs,
	RunE: runExpenseList,
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Long: `Record money spent for a project.

Examples:
  chantier expense add --project villa --type transport --amount 180 \
    --description "Location camion" --provider "Loxam"`,
	Args: cobra.NoArgs,
	RunE: runExpenseAdd,
}

var expenseShowCmd = &cobra.Command{
	Use:   "show [expense-id]",
	Short: "Show an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseShow,
}

var expenseEditCmd = &cobra.Command{
	Use:   "edit [expense-id]",
	Short: "Change fields of an expense",
	Long: `Change fields of an expense. Only the flags given are updated; an
empty --provider or --proof clears the field.

Examples:
  chantier expense edit e1 --amount 1320 --provider "Point P"`,
	Args: cobra.ExactArgs(1),
	RunE: runExpenseEdit,
}

var expenseDeleteCmd = &cobra.Command{
	Use:     "delete [expense-id]",
	Aliases: []string{"rm"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseDelete,
}

var (
	expenseProject     string
	expenseSearch      string
	expenseType        string
	expenseAmount      string
	expenseDate        string
	expenseDescription string
	expenseProvider    string
	expenseProof       string
)

func init() {
	expenseListCmd.Flags().StringVarP(&expenseProject, "project", "P", "", "Filter by project")
	expenseListCmd.Flags().StringVarP(&expenseType, "type", "t", "", "Filter by type")
	expenseListCmd.Flags().StringVarP(&expenseSearch, "search", "q", "", "Match description, provider or project")

	expenseAddCmd.Flags().StringVarP(&expenseProject, "project", "P", "", "Project (default: context)")
	expenseAddCmd.Flags().StringVarP(&expenseType, "type", "t", string(model.ExpenseMaterials), "matériaux, main-d'œuvre, transport or autre")
	expenseAddCmd.Flags().StringVarP(&expenseAmount, "amount", "a", "", "Amount in euros")
	expenseAddCmd.Flags().StringVarP(&expenseDate, "date", "d", "", "Expense date (default: today)")
	expenseAddCmd.Flags().StringVar(&expenseDescription, "description", "", "What was bought")
	expenseAddCmd.Flags().StringVar(&expenseProvider, "provider", "", "Supplier")
	expenseAddCmd.Flags().StringVar(&expenseProof, "proof", "", "Link to the receipt")
	_ = expenseAddCmd.MarkFlagRequired("amount")

	addExpenseEditFlags(expenseEditCmd)

	expenseCmd.AddCommand(expenseListCmd)
	expenseCmd.AddCommand(expenseShowCmd)
	expenseCmd.AddCommand(expenseAddCmd)
	expenseCmd.AddCommand(expenseEditCmd)
	expenseCmd.AddCommand(expenseDeleteCmd)
}

func runExpenseList(cmd *cobra.Command, args []string) error {
	var typ model.ExpenseType
	if expenseType != "" {
		t, err := model.ParseExpenseType(expenseType)
		if err != nil {
			return err
		}
		typ = t
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		if expenseProject != "" {
			p, err := resolveProject(snap.Projects, expenseProject)
			if err != nil {
				return err
			}
			snap.Expenses = finance.ForProject(p.ID, snap).Expenses
		}
		printExpenses(cmd.OutOrStdout(), snap, finance.FilterExpenses(snap, expenseSearch, typ))
		return nil
	})
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	amount, err := model.ParseMoney(expenseAmount)
	if err != nil {
		return err
	}
	typ, err := model.ParseExpenseType(expenseType)
	if err != nil {
		return err
	}
	date := model.Today()
	if expenseDate != "" {
		if date, err = model.ParseDate(expenseDate); err != nil {
			return err
		}
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := projectFlag(snap, expenseProject)
		if err != nil {
			return err
		}

		created, err := st.Expenses().Create(ctx, model.Expense{
			ProjectRef:  model.RefTo(p.ID),
			Type:        typ,
			Description: expenseDescription,
			Amount:      amount,
			Provider:    expenseProvider,
			Date:        date,
			ProofURL:    expenseProof,
		})
		if err != nil {
			return fmt.Errorf("failed to record expense: %w", err)
		}

		snap.Expenses = append(snap.Expenses, created)
		s := finance.SummarizeProject(p, snap)
		fmt.Printf("✓ Recorded %s (%s) on %s, net profit now %s\n",
			model.FormatEUR(created.Amount), created.Type, p.Name, model.FormatEUR(s.NetProfit))
		return nil
	})
}

func addExpenseEditFlags(c *cobra.Command) {
	c.Flags().StringP("project", "P", "", "Move the expense to another project")
	c.Flags().StringP("type", "t", "", "matériaux, main-d'œuvre, transport or autre")
	c.Flags().StringP("amount", "a", "", "Amount in euros")
	c.Flags().StringP("date", "d", "", "Expense date")
	c.Flags().String("description", "", "What was bought")
	c.Flags().String("provider", "", "Supplier")
	c.Flags().String("proof", "", "Link to the receipt")
}

// expensePatch builds a patch from the flags set on cmd
func expensePatch(cmd *cobra.Command, snap model.Snapshot) (model.ExpensePatch, error) {
	var patch model.ExpensePatch

	if v, ok := changedFlag(cmd, "project"); ok {
		p, err := resolveProject(snap.Projects, v)
		if err != nil {
			return patch, err
		}
		ref := model.RefTo(p.ID)
		patch.ProjectRef = &ref
	}
	if v, ok := changedFlag(cmd, "type"); ok {
		t, err := model.ParseExpenseType(v)
		if err != nil {
			return patch, err
		}
		patch.Type = &t
	}
	if v, ok := changedFlag(cmd, "amount"); ok {
		m, err := model.ParseMoney(v)
		if err != nil {
			return patch, err
		}
		patch.Amount = &m
	}
	if v, ok := changedFlag(cmd, "date"); ok {
		d, err := model.ParseDate(v)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	if v, ok := changedFlag(cmd, "description"); ok {
		patch.Description = &v
	}
	if v, ok := changedFlag(cmd, "provider"); ok {
		patch.Provider = &v
	}
	if v, ok := changedFlag(cmd, "proof"); ok {
		patch.ProofURL = &v
	}
	return patch, nil
}

func runExpenseShow(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		e, err := findByID(snap.Expenses, args[0], "expense")
		if err != nil {
			return err
		}
		printExpense(cmd.OutOrStdout(), snap, e)
		return nil
	})
}

func runExpenseEdit(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		e, err := findByID(snap.Expenses, args[0], "expense")
		if err != nil {
			return err
		}
		patch, err := expensePatch(cmd, snap)
		if err != nil {
			return err
		}

		updated, err := st.Expenses().Update(ctx, e.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated expense %s\n", shortID(updated.ID))
		printExpense(cmd.OutOrStdout(), snap, updated)
		return nil
	})
}

func runExpenseDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		expenses, err := st.Expenses().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		e, err := findByID(expenses, args[0], "expense")
		if err != nil {
			return err
		}

		if err := st.Expenses().Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		fmt.Printf("🗑️  Deleted expense: %s (%s)\n", shortID(e.ID), model.FormatEUR(e.Amount))
		return nil
	})
}
