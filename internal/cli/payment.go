package cli

import (
	"context"
	"fmt"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var paymentCmd = &cobra.Command{
	Use:     "payment",
	Aliases: []string{"pay"},
	Short:   "Manage payments received",
}

var paymentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List payments",
	Args:    cobra.NoArgs,
	RunE:    runPaymentList,
}

var paymentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a payment",
	Long: `Record a payment received from a client.

Examples:
  chantier payment add --project villa --amount 5000 --method virement`,
	Args: cobra.NoArgs,
	RunE: runPaymentAdd,
}

var paymentShowCmd = &cobra.Command{
	Use:   "show [payment-id]",
	Short: "Show a payment",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaymentShow,
}

var paymentEditCmd = &cobra.Command{
	Use:   "edit [payment-id]",
	Short: "Change fields of a payment",
	Long: `Change fields of a payment. Only the flags given are updated.

Examples:
  chantier payment edit p1 --amount 5500 --method chèque`,
	Args: cobra.ExactArgs(1),
	RunE: runPaymentEdit,
}

var paymentDeleteCmd = &cobra.Command{
	Use:     "delete [payment-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a payment",
	Args:    cobra.ExactArgs(1),
	RunE:    runPaymentDelete,
}

var (
	paymentProject string
	paymentSearch  string
	paymentAmount  string
	paymentDate    string
	paymentMethod  string
)

func init() {
	paymentListCmd.Flags().StringVarP(&paymentProject, "project", "P", "", "Filter by project")
	paymentListCmd.Flags().StringVarP(&paymentSearch, "search", "q", "", "Match project name or method")

	paymentAddCmd.Flags().StringVarP(&paymentProject, "project", "P", "", "Project (default: context)")
	paymentAddCmd.Flags().StringVarP(&paymentAmount, "amount", "a", "", "Amount in euros")
	paymentAddCmd.Flags().StringVarP(&paymentDate, "date", "d", "", "Payment date (default: today)")
	paymentAddCmd.Flags().StringVarP(&paymentMethod, "method", "m", string(model.PaymentTransfer), "Virement, Chèque, Espèces, CB or Mobile Money")
	_ = paymentAddCmd.MarkFlagRequired("amount")

	addPaymentEditFlags(paymentEditCmd)

	paymentCmd.AddCommand(paymentListCmd)
	paymentCmd.AddCommand(paymentShowCmd)
	paymentCmd.AddCommand(paymentAddCmd)
	paymentCmd.AddCommand(paymentEditCmd)
	paymentCmd.AddCommand(paymentDeleteCmd)
}

func runPaymentList(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		if paymentProject != "" {
			p, err := resolveProject(snap.Projects, paymentProject)
			if err != nil {
				return err
			}
			snap.Payments = finance.ForProject(p.ID, snap).Payments
		}
		printPayments(cmd.OutOrStdout(), snap, finance.FilterPayments(snap, paymentSearch))
		return nil
	})
}

func runPaymentAdd(cmd *cobra.Command, args []string) error {
	amount, err := model.ParseMoney(paymentAmount)
	if err != nil {
		return err
	}
	method, err := model.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return err
	}
	date := model.Today()
	if paymentDate != "" {
		if date, err = model.ParseDate(paymentDate); err != nil {
			return err
		}
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := projectFlag(snap, paymentProject)
		if err != nil {
			return err
		}

		created, err := st.Payments().Create(ctx, model.Payment{
			ProjectRef: model.RefTo(p.ID),
			Amount:     amount,
			Date:       date,
			Method:     method,
		})
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		snap.Payments = append(snap.Payments, created)
		s := finance.SummarizeProject(p, snap)
		fmt.Printf("✓ Recorded %s on %s (remaining %s)\n",
			model.FormatEUR(created.Amount), p.Name, model.FormatEUR(s.OutstandingBalance))
		return nil
	})
}

func addPaymentEditFlags(c *cobra.Command) {
	c.Flags().StringP("project", "P", "", "Move the payment to another project")
	c.Flags().StringP("amount", "a", "", "Amount in euros")
	c.Flags().StringP("date", "d", "", "Payment date")
	c.Flags().StringP("method", "m", "", "Virement, Chèque, Espèces, CB or Mobile Money")
}

// paymentPatch builds a patch from the flags set on cmd
func paymentPatch(cmd *cobra.Command, snap model.Snapshot) (model.PaymentPatch, error) {
	var patch model.PaymentPatch

	if v, ok := changedFlag(cmd, "project"); ok {
		p, err := resolveProject(snap.Projects, v)
		if err != nil {
			return patch, err
		}
		ref := model.RefTo(p.ID)
		patch.ProjectRef = &ref
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
	if v, ok := changedFlag(cmd, "method"); ok {
		m, err := model.ParsePaymentMethod(v)
		if err != nil {
			return patch, err
		}
		patch.Method = &m
	}
	return patch, nil
}

func runPaymentShow(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := findByID(snap.Payments, args[0], "payment")
		if err != nil {
			return err
		}
		printPayment(cmd.OutOrStdout(), snap, p)
		return nil
	})
}

func runPaymentEdit(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := findByID(snap.Payments, args[0], "payment")
		if err != nil {
			return err
		}
		patch, err := paymentPatch(cmd, snap)
		if err != nil {
			return err
		}

		updated, err := st.Payments().Update(ctx, p.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated payment %s\n", shortID(updated.ID))
		printPayment(cmd.OutOrStdout(), snap, updated)
		return nil
	})
}

func runPaymentDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		payments, err := st.Payments().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		p, err := findByID(payments, args[0], "payment")
		if err != nil {
			return err
		}

		if err := st.Payments().Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		fmt.Printf("🗑️  Deleted payment: %s (%s)\n", shortID(p.ID), model.FormatEUR(p.Amount))
		return nil
	})
}
