package cli

import (
	"bytes"
	"testing"

	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/store"
	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	snap := store.DemoData()
	p := snap.Projects[0]

	var buf bytes.Buffer
	printSummary(&buf, p, finance.SummarizeProject(p, snap))
	out := buf.String()

	require.Contains(t, out, "Rénovation Appartement Paris")
	require.Contains(t, out, "8 838,00 €")
	require.Contains(t, out, "3 838,00 €")
	require.Contains(t, out, "1 350,00 €")
	require.Contains(t, out, "27.00%")
	require.NotContains(t, out, "déficitaire")
}

func TestPrintQuote(t *testing.T) {
	snap := store.DemoData()

	var buf bytes.Buffer
	printQuote(&buf, snap, snap.Quotes[0])
	out := buf.String()

	require.Contains(t, out, "Pose parquet chêne")
	require.Contains(t, out, "Installation prises électriques")
	require.Contains(t, out, "7 365,00 €")
	require.Contains(t, out, "TVA 20.0%")
	require.Contains(t, out, "1 473,00 €")
	require.Contains(t, out, "8 838,00 €")
}

func TestPrintListsWhenEmpty(t *testing.T) {
	snap := store.DemoData()
	var buf bytes.Buffer
	printPayments(&buf, snap, nil)
	printExpenses(&buf, snap, nil)
	printQuotes(&buf, snap, nil)
	require.Equal(t, "No payments found.\nNo expenses found.\nNo quotes found.\n", buf.String())
}

func TestPrintOverview(t *testing.T) {
	var buf bytes.Buffer
	printOverview(&buf, finance.BuildOverview(store.DemoData()))
	out := buf.String()

	require.Contains(t, out, "3 chantiers (2 en cours)")
	require.Contains(t, out, "Construction Villa Cap d'Antibes")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "court", truncate("court", 10))
	require.Equal(t, "Rénova...", truncate("Rénovation", 9))
}
