package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:     "quote",
	Aliases: []string{"devis"},
	Short:   "Manage quotes (devis)",
}

var quoteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List quotes",
	Long: `List quotes, newest first.

Examples:
  chantier quote list
  chantier quote list --project villa --status accepté`,
	Args: cobra.NoArgs,
	RunE: runQuoteList,
}

var quoteShowCmd = &cobra.Command{
	Use:   "show [quote-id]",
	Short: "Show a quote with its lines and totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuoteShow,
}

var quoteAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a quote",
	Long: `Create a quote for a project. Each --line is "designation;quantity;unit price".

Examples:
  chantier quote add --project villa --tva 20 \
    --line "Peinture murs et plafonds;120;25" \
    --line "Pose parquet chêne;45;85"`,
	Args: cobra.NoArgs,
	RunE: runQuoteAdd,
}

var quoteEditCmd = &cobra.Command{
	Use:   "edit [quote-id]",
	Short: "Change fields of a quote",
	Long: `Change fields of a quote. Only the flags given are updated. Any --line
replaces all the lines of the quote; --clear-lines removes them.

Examples:
  chantier quote edit d1 --tva 10 --date 2025-02-01
  chantier quote edit d1 --line "Peinture murs et plafonds;130;25"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuoteEdit,
}

var quoteStatusCmd = &cobra.Command{
	Use:   "status [quote-id] [status]",
	Short: "Change the status of a quote",
	Long: `Change the status of a quote. Only accepted quotes count toward
committed revenue.

Examples:
  chantier quote status d1 accepté`,
	Args: cobra.ExactArgs(2),
	RunE: runQuoteStatus,
}

var quoteDeleteCmd = &cobra.Command{
	Use:     "delete [quote-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a quote",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuoteDelete,
}

var (
	quoteProject string
	quoteStatus  string
	quoteSearch  string
	quoteTax     string
	quoteDate    string
	quoteLines   []string
)

func init() {
	quoteListCmd.Flags().StringVarP(&quoteProject, "project", "P", "", "Filter by project")
	quoteListCmd.Flags().StringVarP(&quoteStatus, "status", "s", "", "Filter by status")
	quoteListCmd.Flags().StringVarP(&quoteSearch, "search", "q", "", "Match project name or quote id")

	quoteAddCmd.Flags().StringVarP(&quoteProject, "project", "P", "", "Project (default: context)")
	quoteAddCmd.Flags().StringVar(&quoteTax, "tva", "20", "VAT rate in percent")
	quoteAddCmd.Flags().StringVarP(&quoteDate, "date", "d", "", "Quote date (default: today)")
	quoteAddCmd.Flags().StringVarP(&quoteStatus, "status", "s", string(model.QuoteDraft), "Status")
	quoteAddCmd.Flags().StringArrayVarP(&quoteLines, "line", "L", nil, "Line \"designation;quantity;price\" (repeatable)")

	quoteCmd.AddCommand(quoteListCmd)
	quoteCmd.AddCommand(quoteShowCmd)
	addQuoteEditFlags(quoteEditCmd)

	quoteCmd.AddCommand(quoteAddCmd)
	quoteCmd.AddCommand(quoteEditCmd)
	quoteCmd.AddCommand(quoteStatusCmd)
	quoteCmd.AddCommand(quoteDeleteCmd)
}

// projectFlag resolves a --project value, falling back to the context
func projectFlag(snap model.Snapshot, value string) (model.Project, error) {
	if value == "" {
		value = GetCurrentContext()
	}
	return resolveProject(snap.Projects, value)
}

func runQuoteList(cmd *cobra.Command, args []string) error {
	var status model.QuoteStatus
	if quoteStatus != "" {
		s, err := model.ParseQuoteStatus(quoteStatus)
		if err != nil {
			return err
		}
		status = s
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		if quoteProject != "" {
			p, err := resolveProject(snap.Projects, quoteProject)
			if err != nil {
				return err
			}
			snap.Quotes = finance.ForProject(p.ID, snap).Quotes
		}
		printQuotes(cmd.OutOrStdout(), snap, finance.FilterQuotes(snap, quoteSearch, status))
		return nil
	})
}

func runQuoteShow(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		q, err := findByID(snap.Quotes, args[0], "quote")
		if err != nil {
			return err
		}
		printQuote(cmd.OutOrStdout(), snap, q)
		return nil
	})
}

// taxRate reads a VAT percentage ("20", "5,5", "5.555 %") as an exact fraction
func taxRate(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid VAT rate %q", s)
	}
	return d.Shift(-2), nil
}

func runQuoteAdd(cmd *cobra.Command, args []string) error {
	rate, err := taxRate(quoteTax)
	if err != nil {
		return err
	}
	status, err := model.ParseQuoteStatus(quoteStatus)
	if err != nil {
		return err
	}
	date := model.Today()
	if quoteDate != "" {
		if date, err = model.ParseDate(quoteDate); err != nil {
			return err
		}
	}

	lines := make([]model.LineItem, 0, len(quoteLines))
	for _, raw := range quoteLines {
		li, err := parseLine(raw)
		if err != nil {
			return err
		}
		lines = append(lines, li)
	}

	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := projectFlag(snap, quoteProject)
		if err != nil {
			return err
		}

		created, err := st.Quotes().Create(ctx, model.Quote{
			ProjectRef: model.RefTo(p.ID),
			Date:       date,
			Status:     status,
			TaxRate:    rate,
			LineItems:  lines,
		})
		if err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}

		t := finance.QuoteTotals(created)
		fmt.Printf("✓ Created quote %s for %s: %s HT, %s TTC\n",
			shortID(created.ID), p.Name, model.FormatEUR(t.PreTax), model.FormatEUR(t.TaxInclusive))
		return nil
	})
}

func addQuoteEditFlags(c *cobra.Command) {
	c.Flags().StringP("project", "P", "", "Move the quote to another project")
	c.Flags().String("tva", "", "VAT rate in percent")
	c.Flags().StringP("date", "d", "", "Quote date")
	c.Flags().StringP("status", "s", "", "Status")
	c.Flags().StringArrayP("line", "L", nil, "Line \"designation;quantity;price\" (repeatable, replaces all lines)")
	c.Flags().Bool("clear-lines", false, "Remove every line")
}

// quotePatch builds a patch from the flags set on cmd
func quotePatch(cmd *cobra.Command, snap model.Snapshot) (model.QuotePatch, error) {
	var patch model.QuotePatch
	flags := cmd.Flags()

	if v, ok := changedFlag(cmd, "project"); ok {
		p, err := resolveProject(snap.Projects, v)
		if err != nil {
			return patch, err
		}
		ref := model.RefTo(p.ID)
		patch.ProjectRef = &ref
	}
	if v, ok := changedFlag(cmd, "tva"); ok {
		r, err := taxRate(v)
		if err != nil {
			return patch, err
		}
		patch.TaxRate = &r
	}
	if v, ok := changedFlag(cmd, "date"); ok {
		d, err := model.ParseDate(v)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	if v, ok := changedFlag(cmd, "status"); ok {
		status, err := model.ParseQuoteStatus(v)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}

	clearLines, _ := flags.GetBool("clear-lines")
	raw, _ := flags.GetStringArray("line")
	if clearLines && len(raw) > 0 {
		return patch, fmt.Errorf("--line and --clear-lines are mutually exclusive")
	}
	if clearLines {
		patch.LineItems = []model.LineItem{}
	}
	if len(raw) > 0 {
		patch.LineItems = make([]model.LineItem, 0, len(raw))
		for _, r := range raw {
			li, err := parseLine(r)
			if err != nil {
				return patch, err
			}
			patch.LineItems = append(patch.LineItems, li)
		}
	}
	return patch, nil
}

func runQuoteEdit(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		q, err := findByID(snap.Quotes, args[0], "quote")
		if err != nil {
			return err
		}
		patch, err := quotePatch(cmd, snap)
		if err != nil {
			return err
		}

		updated, err := st.Quotes().Update(ctx, q.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated quote %s\n", shortID(updated.ID))
		printQuote(cmd.OutOrStdout(), snap, updated)
		return nil
	})
}

func runQuoteStatus(cmd *cobra.Command, args []string) error {
	status, err := model.ParseQuoteStatus(args[1])
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st store.Store) error {
		quotes, err := st.Quotes().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		q, err := findByID(quotes, args[0], "quote")
		if err != nil {
			return err
		}

		updated, err := st.Quotes().Update(ctx, q.ID, model.QuotePatch{Status: &status})
		if err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}
		fmt.Printf("✓ Quote %s is now %s\n", shortID(updated.ID), updated.Status)
		return nil
	})
}

func runQuoteDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, st store.Store) error {
		quotes, err := st.Quotes().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		q, err := findByID(quotes, args[0], "quote")
		if err != nil {
			return err
		}

		if err := st.Quotes().Delete(ctx, q.ID); err != nil {
			return fmt.Errorf("failed to delete quote: %w", err)
		}
		fmt.Printf("🗑️  Deleted quote: %s\n", shortID(q.ID))
		return nil
	})
}
