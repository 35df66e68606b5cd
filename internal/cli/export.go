package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/report"
	"github.com/existflow/chantier/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export PDF documents",
}

var exportReportCmd = &cobra.Command{
	Use:   "report [project]",
	Short: "Export the financial report of a project",
	Long: `Export the financial report of a project as PDF.

Examples:
  chantier export report villa
  chantier export report villa -o ~/Documents/villa.pdf`,
	RunE: runExportReport,
}

var exportQuoteCmd = &cobra.Command{
	Use:   "quote [quote-id]",
	Short: "Export a quote as PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportQuote,
}

var exportOutput string

func init() {
	exportReportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: export dir)")
	exportQuoteCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: export dir)")

	exportCmd.AddCommand(exportReportCmd)
	exportCmd.AddCommand(exportQuoteCmd)
}

// outputPath returns -o, or name inside the configured export directory
func outputPath(name string) string {
	if exportOutput != "" {
		return exportOutput
	}
	dir := appConfig.ExportDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

// writeFile creates path and hands it to render
func writeFile(path string, render func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func runExportReport(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		p, err := mustProject(snap, args)
		if err != nil {
			return err
		}

		now := time.Now()
		rel := finance.ForProject(p.ID, snap)
		path := outputPath(report.FileName(p, now))
		err = writeFile(path, func(f *os.File) error {
			return report.ProjectReport(f, p, finance.SummarizeProject(p, snap), rel.Payments, rel.Expenses, now)
		})
		if err != nil {
			return err
		}

		logger.Info("Report exported", logger.F("project", p.ID), logger.F("path", path))
		fmt.Printf("📄 Report written to %s\n", path)
		return nil
	})
}

func runExportQuote(cmd *cobra.Command, args []string) error {
	return withSnapshot(func(ctx context.Context, st store.Store, snap model.Snapshot) error {
		q, err := findByID(snap.Quotes, args[0], "quote")
		if err != nil {
			return err
		}
		p, ok := snap.Project(q.ProjectID())
		if !ok {
			p = model.Project{Name: snap.ProjectName(q.ProjectRef)}
		}

		now := time.Now()
		path := outputPath(report.QuoteFileName(q, now))
		if err := writeFile(path, func(f *os.File) error {
			return report.QuoteDocument(f, q, p, now)
		}); err != nil {
			return err
		}

		logger.Info("Quote exported", logger.F("quote", q.ID), logger.F("path", path))
		fmt.Printf("📄 Quote written to %s\n", path)
		return nil
	})
}
