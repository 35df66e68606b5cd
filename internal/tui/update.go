package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/report"
	"github.com/existflow/chantier/internal/store"
)

const loadTimeout = 30 * time.Second

// tickMsg is sent every second for time updates
type tickMsg time.Time

// loadedMsg carries the result of a foreground load
type loadedMsg struct {
	snap model.Snapshot
	err  error
}

// refreshedMsg is sent when the background refresher reloaded the store
type refreshedMsg model.Snapshot

// exportedMsg reports a finished PDF export
type exportedMsg struct {
	path string
	err  error
}

// Init starts the first load, the clock and the refresh listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), tickCmd(), m.waitForRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadCmd() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		snap, err := store.Load(ctx, st)
		return loadedMsg{snap: snap, err: err}
	}
}

// waitForRefresh listens for snapshots from the refresher
func (m Model) waitForRefresh() tea.Cmd {
	if m.loadedCh == nil {
		return nil
	}
	ch := m.loadedCh
	return func() tea.Msg {
		return refreshedMsg(<-ch)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tickCmd()

	case loadedMsg:
		if msg.err != nil {
			logger.Warn("Dashboard load failed", logger.F("error", msg.err))
			m.status = store.Status{Err: msg.err}
			return m, nil
		}
		m.setSnapshot(msg.snap)
		logger.Debug("Dashboard loaded",
			logger.F("projects", len(msg.snap.Projects)),
			logger.F("quotes", len(msg.snap.Quotes)))
		return m, nil

	case refreshedMsg:
		m.setSnapshot(model.Snapshot(msg))
		m.message = "Données actualisées"
		return m, m.waitForRefresh()

	case exportedMsg:
		if msg.err != nil {
			m.message = "Export impossible: " + msg.err.Error()
		} else {
			m.message = "PDF exporté: " + msg.path
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(m.height-tableReserve, 3))
		m.table.SetWidth(max(m.width-sidebarWidth-6, 20))
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.refresher.Stop()
		return m, tea.Quit

	case key.Matches(msg, keys.Refresh):
		return m.handleRefresh()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil
	}

	// Everything below needs data
	if !m.status.Ready() {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar
		m.table.Blur()

	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Enter):
		if m.currentProject() != nil {
			m.pane = PaneDetail
			m.table.Focus()
		}

	case key.Matches(msg, keys.Tab):
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
		m.refreshTable()

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		if m.pane == PaneDetail {
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.moveProject(key.Matches(msg, keys.Down))

	case key.Matches(msg, keys.Status):
		m.statusFilter = (m.statusFilter + 1) % len(statusFilters)
		m.applyFilter()
		m.refreshTable()
		m.message = "Filtre: " + filterLabel(statusFilters[m.statusFilter])

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.input.SetValue(m.searchText)
		return m, m.input.Focus()

	case key.Matches(msg, keys.Export):
		return m.handleExport()

	case key.Matches(msg, keys.Escape):
		if m.searchText != "" {
			m.searchText = ""
			m.applyFilter()
			m.refreshTable()
			m.message = "Recherche effacée"
		}
	}

	return m, nil
}

func (m *Model) moveProject(down bool) {
	switch {
	case down && m.projCursor < len(m.projects)-1:
		m.projCursor++
	case !down && m.projCursor > 0:
		m.projCursor--
	default:
		return
	}
	m.table.SetCursor(0)
	m.refreshTable()
}

// handleRefresh reloads in the foreground after a failure and asks the
// refresher otherwise
func (m Model) handleRefresh() (tea.Model, tea.Cmd) {
	if !m.status.Ready() {
		m.status = store.Status{Loading: true}
		return m, m.loadCmd()
	}
	m.refresher.Trigger()
	m.message = "Actualisation..."
	return m, nil
}

func (m Model) handleExport() (tea.Model, tea.Cmd) {
	p := m.currentProject()
	if p == nil {
		m.message = "Aucun chantier sélectionné"
		return m, nil
	}
	m.message = "Export en cours..."
	return m, exportCmd(*p, m.snap, m.opts.ExportDir, m.opts.Now())
}

// exportCmd writes the project report to dir
func exportCmd(p model.Project, snap model.Snapshot, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, report.FileName(p, now))

		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		rel := finance.ForProject(p.ID, snap)
		if err := report.ProjectReport(f, p, finance.SummarizeProject(p, snap), rel.Payments, rel.Expenses, now); err != nil {
			f.Close()
			os.Remove(path)
			return exportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{err: err}
		}

		logger.Info("Report exported", logger.F("project", p.ID), logger.F("path", path))
		return exportedMsg{path: path}
	}
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		m.searchText = ""
		m.applyFilter()
		m.refreshTable()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.input.Blur()
		m.message = fmt.Sprintf("%d chantier(s) trouvé(s)", len(m.projects))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live filter as user types
	m.searchText = m.input.Value()
	m.applyFilter()
	m.refreshTable()
	return m, cmd
}

func filterLabel(s model.ProjectStatus) string {
	if s == "" {
		return "tous"
	}
	return string(s)
}
